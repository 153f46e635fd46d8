package probe

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	DefaultSurpriseLimit = 15
	DefaultSeed          = 42
)

// Search kinds as they appear in endpoint paths.
const (
	KindRestaurants = "restaurants"
	KindActivities  = "activities"
)
