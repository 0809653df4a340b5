// internal/domain/mint/errors.go
package mint

import (
	"errors"
	"fmt"
)

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

// エラー種別。ProvisionError.Kind にいずれかが入ります。
var (
	ErrDecoding        = errors.New("mint: decoding failed")
	ErrInvalidAccounts = errors.New("mint: invalid accounts")
	ErrAllocation      = errors.New("mint: allocation failed")
	ErrInitialization  = errors.New("mint: initialization failed")
	ErrMetadata        = errors.New("mint: metadata creation failed")
)

// Stage は失敗したステップを表します。
type Stage string

const (
	StageDecode     Stage = "decode"
	StageAccounts   Stage = "accounts"
	StageAllocate   Stage = "allocate"
	StageInitialize Stage = "initialize"
	StageMetadata   Stage = "metadata"
)

// KindOf は Stage に対応するエラー種別を返します。
func KindOf(s Stage) error {
	switch s {
	case StageDecode:
		return ErrDecoding
	case StageAccounts:
		return ErrInvalidAccounts
	case StageAllocate:
		return ErrAllocation
	case StageInitialize:
		return ErrInitialization
	case StageMetadata:
		return ErrMetadata
	default:
		return nil
	}
}

// ProvisionError は mint 作成の失敗をまとめたものです。
// errors.Is は Kind と原因 (Err) の両方にマッチします。
type ProvisionError struct {
	Stage Stage
	Kind  error
	Err   error
}

// NewProvisionError は stage に対応する Kind を埋めて返します。
func NewProvisionError(stage Stage, err error) *ProvisionError {
	return &ProvisionError{Stage: stage, Kind: KindOf(stage), Err: err}
}

func (e *ProvisionError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v (stage=%s): %v", e.Kind, e.Stage, e.Err)
}

func (e *ProvisionError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// StageOf は err の中から ProvisionError を探し、失敗ステップを返します。
func StageOf(err error) (Stage, bool) {
	var pe *ProvisionError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
