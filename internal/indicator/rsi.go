package indicator

// WindowRSI is a Relative Strength Index computed from simple averages over
// a trailing window of period closes. The oldest close in the window only
// anchors the first change, so period-1 real changes are averaged over
// period. It becomes ready after period+1 closes.
//
// This is the dashboard variant, not Wilder's smoothed RSI: every value
// depends only on the last period closes.
type WindowRSI struct {
	period  int
	buf     []float64
	idx     int
	count   int
	current float64
}

// NewWindowRSI creates a new RSI indicator with the given period (typically 14).
func NewWindowRSI(period int) *WindowRSI {
	return &WindowRSI{
		period: period,
		buf:    make([]float64, period),
	}
}

func (r *WindowRSI) Update(price float64) {
	r.buf[r.idx] = price
	r.idx = (r.idx + 1) % r.period
	r.count++

	if !r.Ready() {
		return
	}

	// idx now points at the oldest close in the window.
	var gain, loss float64
	prev := r.buf[r.idx]
	for k := 1; k < r.period; k++ {
		cur := r.buf[(r.idx+k)%r.period]
		if d := cur - prev; d > 0 {
			gain += d
		} else {
			loss -= d
		}
		prev = cur
	}

	p := float64(r.period)
	avgGain, avgLoss := gain/p, loss/p
	if avgLoss == 0 {
		r.current = 100.0
		return
	}
	rs := avgGain / avgLoss
	r.current = 100.0 - (100.0 / (1.0 + rs))
}

func (r *WindowRSI) Value() float64 { return r.current }
func (r *WindowRSI) Ready() bool    { return r.count > r.period }
