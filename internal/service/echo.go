package service

import (
	"fmt"
	"math"

	"github.com/osint-works/veracity/internal/domain"
)

// Echo constants
const (
	// DefaultEchoAlpha scales the logarithmic corroboration bonus. The
	// log10 curve is deliberately sub-linear so that flooding a claim with
	// repeated coverage buys almost nothing: one echo is worth roughly
	// +0.06, ten thousand roughly +0.80.
	DefaultEchoAlpha = 0.2

	circularMinClusterSize = 3
	circularMinProvenances = 4
)

// EchoCluster groups provenances that trace to the same attribution root.
type EchoCluster struct {
	RootEntity string  `json:"root_entity"`
	RootHop    int     `json:"root_hop"`
	Members    []int   `json:"members"`
	MaxScore   float64 `json:"max_score"`
}

// EchoScore is the result of echo analysis across a fact's sources.
type EchoScore struct {
	RootScore       float64       `json:"root_score"`
	EchoSum         float64       `json:"echo_sum"`
	EchoBonus       float64       `json:"echo_bonus"`
	TotalScore      float64       `json:"total_score"`
	UniqueRoots     int           `json:"unique_roots"`
	EchoClusters    []EchoCluster `json:"echo_clusters,omitempty"`
	CircularWarning bool          `json:"circular_warning"`
}

// EchoDetector clusters corroborating sources by attribution root and
// computes the dampened corroboration bonus.
type EchoDetector struct {
	alpha float64
}

func NewEchoDetector() *EchoDetector {
	return &EchoDetector{alpha: DefaultEchoAlpha}
}

func NewEchoDetectorWithAlpha(alpha float64) *EchoDetector {
	return &EchoDetector{alpha: alpha}
}

// AnalyzeSources clusters the provenances by root, selects the root score,
// and computes the echo bonus. scores must be index-aligned with provs.
func (d *EchoDetector) AnalyzeSources(provs []domain.Provenance, scores []SourceScore) EchoScore {
	if len(provs) == 0 {
		return EchoScore{}
	}

	clusters := d.cluster(provs, scores)

	rootScore := d.selectRootScore(clusters, scores)

	var total float64
	for _, sc := range scores {
		total += sc.Combined
	}
	echoSum := total - rootScore

	bonus := d.computeEchoBonus(echoSum)

	capped := rootScore + bonus
	if capped > 1.0 {
		capped = 1.0
	}

	return EchoScore{
		RootScore:       rootScore,
		EchoSum:         echoSum,
		EchoBonus:       bonus,
		TotalScore:      capped,
		UniqueRoots:     len(clusters),
		EchoClusters:    clusters,
		CircularWarning: d.circularWarning(provs, clusters),
	}
}

// cluster groups provenance indices by attribution root. Provenances with
// no chain cluster alone under their own source identity.
func (d *EchoDetector) cluster(provs []domain.Provenance, scores []SourceScore) []EchoCluster {
	byKey := make(map[string]*EchoCluster)
	var order []string

	for i := range provs {
		var key string
		var entity string
		hop := provs[i].HopCount
		if root := provs[i].RootHop(); root != nil {
			key = root.Entity
			entity = root.Entity
			hop = root.Hop
		} else {
			key = fmt.Sprintf("%s#%d", provs[i].SourceID, provs[i].HopCount)
			entity = provs[i].SourceID
		}

		c, ok := byKey[key]
		if !ok {
			c = &EchoCluster{RootEntity: entity, RootHop: hop}
			byKey[key] = c
			order = append(order, key)
		}
		c.Members = append(c.Members, i)
		if i < len(scores) && scores[i].Combined > c.MaxScore {
			c.MaxScore = scores[i].Combined
		}
	}

	clusters := make([]EchoCluster, 0, len(order))
	for _, key := range order {
		clusters = append(clusters, *byKey[key])
	}
	return clusters
}

// selectRootScore takes the max score among clusters anchored at a primary
// root (hop 0) or standing alone; if none qualify, the global max. Ties
// between hop-0 clusters resolve to the higher combined score.
func (d *EchoDetector) selectRootScore(clusters []EchoCluster, scores []SourceScore) float64 {
	var rootScore float64
	var found bool
	for _, c := range clusters {
		if c.RootHop == 0 || len(c.Members) == 1 {
			if c.MaxScore > rootScore {
				rootScore = c.MaxScore
				found = true
			}
		}
	}
	if found {
		return rootScore
	}

	for _, sc := range scores {
		if sc.Combined > rootScore {
			rootScore = sc.Combined
		}
	}
	return rootScore
}

func (d *EchoDetector) computeEchoBonus(echoSum float64) float64 {
	if echoSum <= 0 {
		return 0
	}
	return d.alpha * math.Log10(1+echoSum)
}

// circularWarning fires when corroboration collapses to a single shared
// non-primary root, or when a pile of sources has no primary origin at all.
func (d *EchoDetector) circularWarning(provs []domain.Provenance, clusters []EchoCluster) bool {
	if len(clusters) == 1 && len(clusters[0].Members) > 2 && clusters[0].RootHop > 0 {
		return true
	}

	if len(provs) > circularMinProvenances-1 {
		for i := range provs {
			if provs[i].HopCount == 0 || provs[i].SourceClass == domain.SourceClassPrimary {
				return false
			}
		}
		return true
	}
	return false
}

// ComputeCorroborationStrength maps independent-root count and root score
// onto a 0-1 strength with diminishing returns, saturating near five
// independent roots.
func (d *EchoDetector) ComputeCorroborationStrength(uniqueRoots int, rootScore float64) float64 {
	if uniqueRoots <= 1 {
		return 0.3
	}
	rootFactor := math.Min(1.0, 0.3+float64(uniqueRoots-1)*0.175)
	scoreFactor := math.Min(1.0, rootScore+0.2)
	return rootFactor * scoreFactor
}
