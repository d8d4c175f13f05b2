package game

import (
	"math"

	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// Autopilot returns an InputPolicy that plays the game unattended: it aims at
// the nearest threat, fires continuously, kites away from anything inside
// its comfort radius and dashes when something gets very close. The headless
// report uses it to exercise full runs.
func Autopilot() InputPolicy {
	const (
		comfort   = 140.0
		dashRange = 55.0
		edgeBias  = 80.0
	)
	return func(s *Sim, tick int) Input {
		in := Input{Aim: s.centre()}
		p := s.player
		if p == nil {
			return in
		}

		threat, dist := nearestThreat(s, p.Pos)
		if threat == nil {
			return in
		}
		in.Aim = *threat
		in.Shoot = true

		away := vmath.Vec2{}
		if dist < comfort {
			away = p.Pos.Sub(*threat)
		}
		// Drift back toward the middle when pinned against a wall.
		if p.Pos.X < edgeBias || p.Pos.X > s.width-edgeBias ||
			p.Pos.Y < edgeBias || p.Pos.Y > s.height-edgeBias {
			away = away.Add(s.centre().Sub(p.Pos).Normalize().Scale(comfort))
		}
		if away.LenSq() > 0 {
			dir := away.Normalize()
			in.Right = dir.X > 0.38
			in.Left = dir.X < -0.38
			in.Down = dir.Y > 0.38
			in.Up = dir.Y < -0.38
		}
		in.Dash = dist < dashRange && tick%2 == 0
		return in
	}
}

// nearestThreat returns the closest enemy or boss centre.
func nearestThreat(s *Sim, from vmath.Vec2) (*vmath.Vec2, float64) {
	var best *vmath.Vec2
	bestSq := math.Inf(1)
	consider := func(p vmath.Vec2) {
		if d := vmath.DistSq(from, p); d < bestSq {
			bestSq = d
			v := p
			best = &v
		}
	}
	for _, e := range s.enemies {
		consider(e.Pos)
	}
	if s.boss != nil {
		consider(s.boss.Pos)
	}
	if best == nil {
		return nil, math.Inf(1)
	}
	return best, math.Sqrt(bestSq)
}
