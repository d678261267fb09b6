// Package domain はalertsフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrRuleNotFound はルールが存在しないか他オーナーのものである場合に返されます。
	ErrRuleNotFound = errors.New("alert rule not found")
	// ErrDuplicateRule は同一内容のactiveなルールが既に存在する場合に返されます。
	ErrDuplicateRule = errors.New("identical active alert rule already exists")
	// ErrSymbolRequired はシンボルが空の場合に返されます。
	ErrSymbolRequired = errors.New("symbol is required")
	// ErrInvalidCondition はconditionがabove/below以外の場合に返されます。
	ErrInvalidCondition = errors.New("condition must be above or below")
	// ErrInvalidThreshold はしきい値が正でない場合に返されます。
	ErrInvalidThreshold = errors.New("threshold must be positive")
	// ErrNotTriggered はtriggered状態でないルールのリセットで返されます。
	ErrNotTriggered = errors.New("alert rule is not triggered")
)
