package planner

import "fmt"

// Alpha is the title opacity at output time t for the display window
// [start, end]: hidden before start, a one-second linear fade in, fully
// opaque, a one-second linear fade out ending at end, hidden afterwards.
//
// It evaluates exactly the branches of [AlphaExpr], in the same order.
func Alpha(t, start, end float64) float64 {
	switch {
	case t < start:
		return 0
	case t < start+1:
		return t - start
	case t < end-1:
		return 1
	case t < end:
		return end - t
	default:
		return 0
	}
}

// AlphaExpr is the drawtext alpha expression equivalent to [Alpha].
func AlphaExpr(start, end float64) string {
	s, e := fmtNum(start), fmtNum(end)
	return fmt.Sprintf("if(lt(t,%[1]s),0,if(lt(t,%[1]s+1),t-%[1]s,if(lt(t,%[2]s-1),1,if(lt(t,%[2]s),%[2]s-t,0))))", s, e)
}
