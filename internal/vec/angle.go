package vec

import "math"

// NormalizeAngle приводит угол к диапазону (-Pi, Pi]
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// AngleDiff возвращает кратчайшую угловую разницу target-current в (-Pi, Pi]
func AngleDiff(current, target float64) float64 {
	return NormalizeAngle(target - current)
}

// ClampMagnitude ограничивает |value| величиной limit, сохраняя знак
func ClampMagnitude(value, limit float64) float64 {
	if value > limit {
		return limit
	}
	if value < -limit {
		return -limit
	}
	return value
}

// Clamp ограничивает value диапазоном [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
