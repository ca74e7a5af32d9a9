package game

const (
	baseScore     = 10
	maxSpeedBonus = 20.0
	// speed bonus loses one point per this many milliseconds
	speedDecayMs = 100.0
)

// Score returns the points for one swipe. A wrong swipe is worth nothing; a
// correct one earns the base, one point per prior correct swipe and a speed
// bonus that decays linearly from 20 at 0ms to 0 at 2000ms.
func Score(isCorrect bool, swipeTimeMs float64, streak int) int {
	if !isCorrect {
		return 0
	}
	speedBonus := maxSpeedBonus - swipeTimeMs/speedDecayMs
	if speedBonus < 0 {
		speedBonus = 0
	}
	return int(float64(baseScore+streak) + speedBonus)
}
