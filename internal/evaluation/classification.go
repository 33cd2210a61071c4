// Package evaluation scores binary predictions against held-out labels.
package evaluation

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// UndefinedMetricWarning reports a metric whose denominator was zero and
// which was therefore set to Result.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w UndefinedMetricWarning) String() string {
	return fmt.Sprintf("%s is ill-defined and being set to %.1f due to %s", w.Metric, w.Result, w.Condition)
}

// ConfusionMatrix counts outcomes with 1 as the positive class.
type ConfusionMatrix struct {
	TP, FP, TN, FN int
}

// Report is the diagnostic summary printed after training.
type Report struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Support   int
	Confusion ConfusionMatrix
	Warnings  []UndefinedMetricWarning
}

// Evaluate compares predictions with ground truth. Labels must be 0 or 1.
func Evaluate(yTrue, yPred []int) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, errors.Newf("evaluate: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Report{}, errors.New("evaluate: no samples")
	}

	var cm ConfusionMatrix
	for i, t := range yTrue {
		p := yPred[i]
		if (t != 0 && t != 1) || (p != 0 && p != 1) {
			return Report{}, errors.Newf("evaluate: sample %d is not binary (true=%d, pred=%d)", i, t, p)
		}
		switch {
		case t == 1 && p == 1:
			cm.TP++
		case t == 0 && p == 1:
			cm.FP++
		case t == 0 && p == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}

	r := Report{Support: len(yTrue), Confusion: cm}
	r.Accuracy = float64(cm.TP+cm.TN) / float64(len(yTrue))

	if cm.TP+cm.FP > 0 {
		r.Precision = float64(cm.TP) / float64(cm.TP+cm.FP)
	} else {
		r.Warnings = append(r.Warnings, UndefinedMetricWarning{Metric: "precision", Condition: "no predicted samples", Result: 0})
	}

	if cm.TP+cm.FN > 0 {
		r.Recall = float64(cm.TP) / float64(cm.TP+cm.FN)
	} else {
		r.Warnings = append(r.Warnings, UndefinedMetricWarning{Metric: "recall", Condition: "no true samples", Result: 0})
	}

	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r, nil
}
