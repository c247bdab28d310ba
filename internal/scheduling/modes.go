package scheduling

// Dimension is one of the two independent voting axes on an event.
type Dimension string

const (
	DimensionTime       Dimension = "time"
	DimensionRestaurant Dimension = "restaurant"
)

func (d Dimension) Valid() bool {
	return d == DimensionTime || d == DimensionRestaurant
}

// TimeMode is the scheduling policy for the time dimension.
type TimeMode string

const (
	TimeFixed         TimeMode = "FIXED"
	TimeVoting        TimeMode = "VOTING"
	TimeCapacityBased TimeMode = "CAPACITY_BASED"
)

func (m TimeMode) Valid() bool {
	return m == TimeFixed || m == TimeVoting || m == TimeCapacityBased
}

// MultiOption reports whether the mode carries 2-6 options instead of exactly one.
func (m TimeMode) MultiOption() bool {
	return m == TimeVoting || m == TimeCapacityBased
}

// RequiresVoting reports whether participants pick among the options themselves.
func (m TimeMode) RequiresVoting() bool {
	return m == TimeVoting || m == TimeCapacityBased
}

// RestaurantMode is the scheduling policy for the restaurant dimension.
type RestaurantMode string

const (
	RestaurantFixed  RestaurantMode = "FIXED"
	RestaurantVoting RestaurantMode = "VOTING"
	RestaurantNone   RestaurantMode = "NONE"
)

func (m RestaurantMode) Valid() bool {
	return m == RestaurantFixed || m == RestaurantVoting || m == RestaurantNone
}

func (m RestaurantMode) MultiOption() bool {
	return m == RestaurantVoting
}

func (m RestaurantMode) RequiresVoting() bool {
	return m == RestaurantVoting
}

// Option list cardinality bounds for the multi-option modes.
const (
	MinVotingOptions = 2
	MaxOptions       = 6
)
