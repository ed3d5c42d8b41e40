package quiz

// Band is the descriptive result tier of a completed quiz
type Band struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

var (
	BandOutstanding  = Band{Key: "outstanding", Title: "Outstanding!", Icon: "🏆"}
	BandGreatJob     = Band{Key: "great", Title: "Great Job!", Icon: "🎉"}
	BandGoodEffort   = Band{Key: "good", Title: "Good Effort!", Icon: "👍"}
	BandKeepLearning = Band{Key: "learning", Title: "Keep Learning!", Icon: "📚"}
)

// BandFor classifies a percentage in [0, 100]
func BandFor(percentage float64) Band {
	switch {
	case percentage >= 90:
		return BandOutstanding
	case percentage >= 70:
		return BandGreatJob
	case percentage >= 50:
		return BandGoodEffort
	default:
		return BandKeepLearning
	}
}
