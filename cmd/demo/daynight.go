package main

import (
	"fmt"
	stdmath "math"

	"forgecore/core"
	"forgecore/ecs"
	"forgecore/physmath"
)

// dayPalette holds the sun color/intensity for one key time of day.
// Grounded on the teacher's cmd/demo/daynight.go dayPalette, trimmed to
// the fields the current pipeline can actually consume: this engine has
// no skybox or fog pass, so the zenith/horizon/ground/fog fields the
// teacher animated are dropped along with them.
type dayPalette struct {
	t            float32 // normalised time 0..1
	sunColor     core.Color
	sunIntensity float32
}

// palettes defines the key sun states throughout the day, in order,
// wrapping from the last entry back to the first.
var palettes = []dayPalette{
	{t: 0.00, sunColor: core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1}, sunIntensity: 1.20}, // noon
	{t: 0.22, sunColor: core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1}, sunIntensity: 0.90}, // golden hour
	{t: 0.30, sunColor: core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1}, sunIntensity: 0.25}, // dusk
	{t: 0.50, sunColor: core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1}, sunIntensity: 0.12}, // midnight, moonlight
	{t: 0.70, sunColor: core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1}, sunIntensity: 0.20}, // pre-dawn
	{t: 0.78, sunColor: core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1}, sunIntensity: 0.70}, // sunrise
}

// DayNight drives an animated day/night cycle onto a directional light
// entity's Color/Intensity and its Transform's rotation.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool
	Sun    ecs.Entity
}

func NewDayNight(sun ecs.Entity) *DayNight {
	return &DayNight{Time: 0.0, Speed: 120.0, Active: true, Sun: sun}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	if dn.Time > 1.0 {
		dn.Time -= 1.0
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette returns the linearly interpolated palette for time t (0..1).
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	var a, b dayPalette
	var localT float32
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		ta := palettes[i].t
		tb := palettes[next].t
		if next == 0 {
			tb = 1.0
			if t >= ta || t < palettes[0].t {
				a, b = palettes[i], palettes[0]
				if t >= ta {
					localT = (t - ta) / (tb - ta)
				} else {
					localT = (t + 1.0 - ta) / (tb - ta)
				}
				break
			}
		} else if t >= ta && t < tb {
			a, b = palettes[i], palettes[next]
			localT = (t - ta) / (tb - ta)
			break
		}
	}
	return dayPalette{
		sunColor:     lerpColor(a.sunColor, b.sunColor, localT),
		sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*localT,
	}
}

// Apply pushes the current time's sun color/intensity/direction onto the
// ECS world's light entity.
func (dn *DayNight) Apply(w *ecs.World) {
	p := samplePalette(dn.Time)
	light := w.GetLight(dn.Sun)
	transform := w.GetTransform(dn.Sun)
	if light == nil || transform == nil {
		return
	}

	light.Color = [3]float32{p.sunColor.R, p.sunColor.G, p.sunColor.B}
	light.Intensity = p.sunIntensity

	angle := float64(dn.Time * 2 * stdmath.Pi)
	transform.Rotation = physmath.QuaternionFromAxisAngle(physmath.Vec3{X: 1, Y: 0, Z: 0}, angle)
}

// TimeOfDayStr returns a human-readable time label.
func (dn *DayNight) TimeOfDayStr() string {
	hours := float32(stdmath.Mod(float64(dn.Time*24.0+12.0), 24.0))
	h := int(hours) % 24
	m := int((hours - float32(h)) * 60)
	period := "AM"
	displayH := h
	if h == 0 {
		displayH = 12
	} else if h == 12 {
		period = "PM"
	} else if h > 12 {
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
