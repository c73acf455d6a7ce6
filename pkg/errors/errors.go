// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 推論エンジンのエラー分類（ConfigError / StateError / NumericError）を
// 構造化された型として定義し、cockroachdb/errorsによるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("crosscat-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ProposalRejectedWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	推論エンジンの警告型
//
// ===========================================================================

// ProposalRejectedWarning はハイパーパラメータ遷移の提案値が棄却された場合に発生する警告です。
// 正値制約（r, s, nu > 0）に違反する提案は対数確率 -Inf として扱われ、棄却されます。
type ProposalRejectedWarning struct {
	Hyper  string
	Value  float64
	Reason string
}

func (w *ProposalRejectedWarning) Error() string {
	return fmt.Sprintf("proposal for hyperparameter '%s' rejected (value=%g): %s", w.Hyper, w.Value, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ProposalRejectedWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("hyper", w.Hyper).
		Float64("value", w.Value).
		Str("reason", w.Reason).
		Str("type", "ProposalRejectedWarning")
}

// NewProposalRejectedWarning は新しいProposalRejectedWarningを作成します。
func NewProposalRejectedWarning(hyper string, value float64, reason string) *ProposalRejectedWarning {
	return &ProposalRejectedWarning{Hyper: hyper, Value: value, Reason: reason}
}

// DegenerateClusterWarning は十分統計量が退化した状態（例: クラスタ内の全データが
// 同一の値）で遷移を試みた場合に発生する警告です。
type DegenerateClusterWarning struct {
	Family  string
	Cluster int
	N       int
}

func (w *DegenerateClusterWarning) Error() string {
	return fmt.Sprintf("cluster %d of family '%s' has degenerate statistics (N=%d)", w.Cluster, w.Family, w.N)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateClusterWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("family", w.Family).
		Int("cluster", w.Cluster).
		Int("n", w.N).
		Str("type", "DegenerateClusterWarning")
}

// NewDegenerateClusterWarning は新しいDegenerateClusterWarningを作成します。
func NewDegenerateClusterWarning(family string, cluster, n int) *DegenerateClusterWarning {
	return &DegenerateClusterWarning{Family: family, Cluster: cluster, N: n}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ConfigError はハイパーパラメータが構築時または遷移の提案後に
// 正値制約（r, s, nu > 0）に違反した場合のエラーです。
// ハイパーパラメータ遷移中のConfigErrorは致命的エラーではなく、
// その提案を対数確率 -Inf として棄却します。
type ConfigError struct {
	Param  string
	Reason string
	Value  float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("crosscat: invalid hyperparameter '%s': %s (got: %g)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Float64("value", e.Value).
		Str("type", "ConfigError")
}

// NewConfigError は新しいConfigErrorを作成し、スタックトレースを付与します。
func NewConfigError(param, reason string, value float64) error {
	err := &ConfigError{Param: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// StateError は十分統計量が不正になる操作（例: N < 0 になるremove）が
// 要求された場合のエラーです。呼び出し側の推論ステップはその遷移を中断し、
// 別の候補で再試行しなければなりません。
type StateError struct {
	Op     string
	Detail string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("crosscat: %s: invalid component state: %s", e.Op, e.Detail)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StateError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("detail", e.Detail).
		Str("type", "StateError")
}

// NewStateError は新しいStateErrorを作成し、スタックトレースを付与します。
func NewStateError(op, detail string) error {
	err := &StateError{Op: op, Detail: detail}
	return errors.WithStack(err)
}

// NumericError は対数密度の評価が数値的に不可能な場合のエラーです。
// 例えば、精度 rho <= 0 のまま予測対数確率を評価した場合や、
// 事後更新で sn <= 0 が生じた場合など。
type NumericError struct {
	Op     string
	Values []float64
}

func (e *NumericError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("crosscat: numeric failure in %s. Values: [%s]", e.Op, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Floats64("values", e.Values).
		Str("type", "NumericError")
}

// NewNumericError は新しいNumericErrorを作成し、スタックトレースを付与します。
func NewNumericError(op string, values ...float64) error {
	err := &NumericError{Op: op, Values: values}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、Bernoulli族に {0, 1} 以外の値を与えた場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("crosscat: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrUnknownFamily は未登録のコンポーネントモデル族が要求された場合のエラーです。
	ErrUnknownFamily = New("unknown component model family")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrEmptyGrid はハイパーパラメータグリッドが空の場合のエラーです。
	ErrEmptyGrid = New("empty hyperparameter grid")
)
