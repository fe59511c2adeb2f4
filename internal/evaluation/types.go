package evaluation

// Scores holds the holdout metrics of a single regression target.
type Scores struct {
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// Split holds row indices for a train/test partition.
type Split struct {
	Train []int
	Test  []int
}
