// Package hardness maps a hole's drilling duration to a rock hardness rating.
//
// Classify(minutes) returns one of four ordered categories; Index(minutes)
// returns a continuous 0–100 score. Both share the breakpoints 16, 24, 40
// and 60 minutes, so a longer drill time never yields a softer rating.
//
//	< 16 min   soft rock        index 0–25
//	16–24 min  medium rock      index 25–50
//	24–40 min  hard rock        index 50–75
//	≥ 40 min   very hard rock   index 75–100 (saturates at 60 min)
package hardness
