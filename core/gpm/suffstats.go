package gpm

import (
	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

// SuffStats は1つのコンポーネントに取り込まれたデータの十分統計量
// (N, sum_x, sum_x_sq) を保持する。取り込み順序に依存せず、
// この3つの値だけで尤度計算に必要な情報が全て決まる
type SuffStats struct {
	// N は取り込まれたデータ点の数
	N int

	// SumX は取り込まれた値の総和
	SumX float64

	// SumXSq は取り込まれた値の二乗和
	SumXSq float64
}

// Incorporate はデータ点 x を統計量に取り込む。償却 O(1)
func (s *SuffStats) Incorporate(x float64) {
	s.N++
	s.SumX += x
	s.SumXSq += x * x
}

// Remove は以前に取り込んだデータ点 x を統計量から取り除く。
// N が負になる場合は StateError を返す
func (s *SuffStats) Remove(x float64) error {
	if s.N <= 0 {
		return errors.NewStateError("SuffStats.Remove", "N would drop below 0")
	}
	s.N--
	s.SumX -= x
	s.SumXSq -= x * x
	if s.N == 0 {
		// 浮動小数点の残差が蓄積しないよう、空になったら厳密にゼロへ戻す
		s.SumX = 0
		s.SumXSq = 0
	}
	return nil
}

// Empty は統計量が空（N == 0）かどうかを返す。値レシーバなので
// Stats() の戻り値のような非アドレス指定可能な値にもそのまま呼べる
func (s SuffStats) Empty() bool {
	return s.N == 0
}
