package simulate

import "testing"

func TestBuyFillPriceAppliesSlippageUpward(t *testing.T) {
	got := buyFillPrice(100, 0.02)
	if got != 102 {
		t.Errorf("buyFillPrice(100, 0.02) = %v, want 102", got)
	}
}

func TestSellFillPriceAppliesSlippageDownward(t *testing.T) {
	got := sellFillPrice(100, 0.02)
	if got != 98 {
		t.Errorf("sellFillPrice(100, 0.02) = %v, want 98", got)
	}
}

func TestShareCountFloors(t *testing.T) {
	got := shareCount(1000, 1, 33)
	if got != 30 { // 1000/33 = 30.30..
		t.Errorf("shareCount = %v, want 30", got)
	}
}

func TestShareCountZeroPriceIsZeroShares(t *testing.T) {
	if got := shareCount(1000, 1, 0); got != 0 {
		t.Errorf("shareCount with zero price = %v, want 0", got)
	}
}

func TestInterpretStopTargetMultiplierBand(t *testing.T) {
	// 0.95 is within the multiplier band around 1 (tolerance 0.5, upper 3.0).
	got := interpretStopTarget(100, 0.95)
	if got != 95 {
		t.Errorf("interpretStopTarget(100, 0.95) = %v, want 95 (multiplier interpretation)", got)
	}
}

func TestInterpretStopTargetAbsolutePrice(t *testing.T) {
	// 98 is well outside the multiplier band, so it is treated as an
	// already-absolute price.
	got := interpretStopTarget(100, 98)
	if got != 98 {
		t.Errorf("interpretStopTarget(100, 98) = %v, want 98 (absolute interpretation)", got)
	}
}

func TestInterpretStopTargetZeroIsUnset(t *testing.T) {
	if got := interpretStopTarget(100, 0); got != 0 {
		t.Errorf("interpretStopTarget(100, 0) = %v, want 0", got)
	}
}
