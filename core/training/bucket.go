package training

import (
	"sort"

	"github.com/pugetops/ferrytrack/core/model"
)

// Bucketize groups validated records by (departing, arriving) terminal pair.
// Each route pair gets its own model. Every pair is kept, including ones too
// small to fit; the trainer turns those into explicit null models. Buckets
// come back in deterministic pair order.
func Bucketize(records []model.TrainingDataRecord) []model.TerminalPairBucket {
	byPair := map[model.TerminalPair][]model.TrainingDataRecord{}
	for _, r := range records {
		k := r.PairKey()
		byPair[k] = append(byPair[k], r)
	}

	pairs := make([]model.TerminalPair, 0, len(byPair))
	for p := range byPair {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].String() < pairs[j].String() })

	out := make([]model.TerminalPairBucket, 0, len(pairs))
	for _, p := range pairs {
		recs := byPair[p]
		out = append(out, model.TerminalPairBucket{
			Pair:    p,
			Records: recs,
			Stats:   bucketStats(recs),
		})
	}
	return out
}

func bucketStats(recs []model.TrainingDataRecord) model.BucketStats {
	s := model.BucketStats{TotalRecords: len(recs), RetainedRecords: len(recs)}
	if len(recs) == 0 {
		return s
	}
	var delay, dock, sea float64
	for _, r := range recs {
		delay += r.DelayMin
		dock += r.AtDockMin
		sea += r.AtSeaMin
	}
	n := float64(len(recs))
	s.MeanDelayMin = delay / n
	s.MeanAtDockMin = dock / n
	s.MeanAtSeaMin = sea / n
	return s
}
