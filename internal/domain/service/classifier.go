package service

// Classifier is a binary tabular classifier. Rows of X are aligned with the
// feature order used at fit time; labels are 0 or 1.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) int
	PredictProba(x []float64) []float64
}

// ImportanceReporter is implemented by classifiers that expose per-feature
// importance scores, aligned with the fit-time feature order.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// ClassifierFactory returns a fresh, unfitted classifier.
type ClassifierFactory interface {
	Kind() string
	New() Classifier
}
