package engx

import "time"

// nowFunc is the clock EstimatorStatus stamps its status line with.
var nowFunc = time.Now
