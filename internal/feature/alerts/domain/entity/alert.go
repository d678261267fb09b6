// Package entity defines the domain models for the alerts feature.
package entity

import "time"

// Condition はアラートの発火条件の向きです。
type Condition string

const (
	ConditionAbove Condition = "above" // price >= threshold
	ConditionBelow Condition = "below" // price <= threshold
)

// Status はアラートルールの状態です。
// activeからtriggeredへの遷移は一方向で、オーナーのリセット操作でのみ
// activeへ戻ります。disabledは評価対象外の終端状態です。
type Status string

const (
	StatusActive    Status = "active"
	StatusTriggered Status = "triggered"
	StatusDisabled  Status = "disabled"
)

// AlertRule は価格しきい値アラートのルールです。
//
// Rearmがtrueの場合、triggered後に価格がしきい値をRearmMarginぶん逆方向に
// 跨いで戻ると自動的にactiveへ再武装します。falseの場合はオーナーの
// リセット操作だけが再武装の手段です。
type AlertRule struct {
	ID              string
	OwnerID         string
	Symbol          string
	Condition       Condition
	Threshold       float64
	Status          Status
	Rearm           bool
	RearmMargin     float64
	CreatedAt       time.Time
	LastTriggeredAt time.Time // ゼロ値は未発火
}

// ConditionMet は価格が発火条件を満たすかを返します。
func (r AlertRule) ConditionMet(price float64) bool {
	switch r.Condition {
	case ConditionAbove:
		return price >= r.Threshold
	case ConditionBelow:
		return price <= r.Threshold
	default:
		return false
	}
}

// RearmCrossed はtriggered状態のルールが自動再武装の条件
// （しきい値をマージンぶん逆方向に跨いだ）を満たすかを返します。
func (r AlertRule) RearmCrossed(price float64) bool {
	if !r.Rearm {
		return false
	}
	switch r.Condition {
	case ConditionAbove:
		return price < r.Threshold-r.RearmMargin
	case ConditionBelow:
		return price > r.Threshold+r.RearmMargin
	default:
		return false
	}
}

// Event はルール発火時に通知される内容です。
type Event struct {
	RuleID      string
	OwnerID     string
	Symbol      string
	Condition   Condition
	Threshold   float64
	Price       float64
	TriggeredAt time.Time
}
