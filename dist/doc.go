// Package dist implements the concrete component model families that plug
// into the gpm contract: the collapsed Normal with a Normal-Gamma prior,
// its uncollapsed sibling NormalUC, and the collapsed Beta-Bernoulli.
//
// Each family registers itself with the gpm registry under a stable name,
// so the engine can build components by family name alone:
//
//	comp, err := gpm.New("normal_uc", gpm.SuffStats{}, hypers, src)
//
// All closed-form densities and samplers are evaluated through
// gonum.org/v1/gonum/stat/distuv.
package dist
