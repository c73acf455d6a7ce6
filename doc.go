// Package crosscat is a nonparametric mixture inference engine for Go.
//
// crosscat models tabular data as a Dirichlet-process mixture: every row
// belongs to a latent cluster, and each column is described by a
// pluggable component model (a generative population model) that keeps
// cheap sufficient statistics instead of raw data. Inference runs by
// Gibbs-style transitions over the row partition, the component
// parameters, the shared hyperparameters, and the CRP concentration.
//
// 主な特徴:
//   - 共役事前分布による崩壊版 (collapsed) と明示パラメータ版
//     (uncollapsed) のコンポーネントモデル
//   - 十分統計量のみで動く Incorporate / Remove の増分設計
//   - グリッドGibbsによるハイパーパラメータ遷移
//   - 事後予測分布からの行シミュレーション
//
// Quick start:
//
//	X := mat.NewDense(rows, cols, data)
//	state, err := engine.NewState(X, []string{"normal", "bernoulli"},
//		engine.WithSeed(42),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := state.Transition(100); err != nil {
//		log.Fatal(err)
//	}
//	row, err := state.SimulateRow()
//
// Package layout:
//   - core/gpm: the component model contract, sufficient statistics,
//     hyperparameters, and the family registry
//   - dist: built-in families (normal, normal_uc, bernoulli)
//   - engine: columns, the mixture state, and the transition kernels
//   - pkg/errors: typed errors with stack traces and warning routing
//   - pkg/log: structured logging helpers
package crosscat
