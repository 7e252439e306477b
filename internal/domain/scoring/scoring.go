package scoring

// Color is the three-grade traffic-light scale used for every survey metric.
type Color string

const (
	ColorGreen  Color = "🟢"
	ColorYellow Color = "🟡"
	ColorRed    Color = "🔴"
)

// Weight maps a color to its numeric contribution to the performance average.
func (c Color) Weight() float64 {
	switch c {
	case ColorGreen:
		return 2
	case ColorYellow:
		return 1
	default:
		return 0
	}
}

// ColorFromTag parses a raw callback tag into a Color.
func ColorFromTag(tag string) (Color, bool) {
	switch Color(tag) {
	case ColorGreen, ColorYellow, ColorRed:
		return Color(tag), true
	default:
		return "", false
	}
}

// Final verdict messages shown to the user together with the final color.
const (
	MessageGreen  = "молодец - так держать"
	MessageYellow = "сегодня передышка ?"
	MessageRed    = "ты в зоне риска."
)

// Result is the full grading of a single set of answers. It is derived on
// demand and never persisted.
type Result struct {
	MoodColor      Color
	CampaignsColor Color
	GeoColor       Color
	CreativesColor Color
	AccountsColor  Color
	Average        float64
	FinalColor     Color
	Message        string
}

func gradeCampaigns(n int) Color {
	switch {
	case n >= 20:
		return ColorGreen
	case n >= 10:
		return ColorYellow
	default:
		return ColorRed
	}
}

func gradeGeo(n int) Color {
	switch {
	case n >= 4:
		return ColorGreen
	case n >= 2:
		return ColorYellow
	default:
		return ColorRed
	}
}

func gradeCreatives(n int) Color {
	switch {
	case n >= 3:
		return ColorGreen
	case n >= 1:
		return ColorYellow
	default:
		return ColorRed
	}
}

func gradeAccounts(n int) Color {
	switch {
	case n >= 4:
		return ColorGreen
	case n >= 2:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Score grades the four activity counts against the fixed thresholds and
// bands the averaged result. Mood is carried through as its own wellbeing
// signal and does not participate in the performance average.
func Score(mood Color, campaigns, geo, creatives, accounts int) Result {
	res := Result{
		MoodColor:      mood,
		CampaignsColor: gradeCampaigns(campaigns),
		GeoColor:       gradeGeo(geo),
		CreativesColor: gradeCreatives(creatives),
		AccountsColor:  gradeAccounts(accounts),
	}

	performance := []Color{res.CampaignsColor, res.GeoColor, res.CreativesColor, res.AccountsColor}
	var sum float64
	for _, c := range performance {
		sum += c.Weight()
	}
	res.Average = sum / float64(len(performance))

	switch {
	case res.Average >= 1.5:
		res.FinalColor = ColorGreen
		res.Message = MessageGreen
	case res.Average >= 0.75:
		res.FinalColor = ColorYellow
		res.Message = MessageYellow
	default:
		res.FinalColor = ColorRed
		res.Message = MessageRed
	}

	return res
}
