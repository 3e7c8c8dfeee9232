package orderbook

import (
	"testing"

	"coreex/domain"

	"github.com/google/uuid"
)

func order(side domain.Side, price, volume uint64) domain.Order {
	return domain.Order{ID: uuid.New(), Side: side, Price: price, Volume: volume}
}

func TestPlace_PartialFillAgainstOneMaker(t *testing.T) {
	book, err := NewWithOrders([]domain.Order{order(domain.Sell, 4500, 7)})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	buy := order(domain.Buy, 4900, 20)
	deals := book.Place(buy)

	if len(deals) != 1 {
		t.Fatalf("expected 1 deal, got %d", len(deals))
	}
	if deals[0].Volume != 7 {
		t.Errorf("deal volume = %d, want 7", deals[0].Volume)
	}
	if deals[0].TakerOrder.Volume != 20 {
		t.Errorf("taker snapshot volume = %d, want 20 (pre-decrement)", deals[0].TakerOrder.Volume)
	}

	resting, ok := book.Get(buy.ID)
	if !ok || resting.Volume != 13 {
		t.Errorf("resting buy volume = %+v, want 13", resting)
	}
	if _, ok := book.BestSellPrice(); ok {
		t.Errorf("expected sells empty")
	}
}

func TestPlace_FullFillAcrossTwoLevels(t *testing.T) {
	book, err := NewWithOrders([]domain.Order{
		order(domain.Buy, 5200, 3),
		order(domain.Buy, 5100, 12),
		order(domain.Buy, 4700, 10),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	sell := order(domain.Sell, 4800, 15)
	deals := book.Place(sell)

	if len(deals) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(deals))
	}
	if deals[0].MakerOrder.Price != 5200 || deals[0].Volume != 3 {
		t.Errorf("deal[0] = %+v, want maker@5200 vol 3", deals[0])
	}
	if deals[1].MakerOrder.Price != 5100 || deals[1].Volume != 12 {
		t.Errorf("deal[1] = %+v, want maker@5100 vol 12", deals[1])
	}

	remainingBuys := book.BuyOrders()
	if len(remainingBuys) != 1 || remainingBuys[0].Price != 4700 {
		t.Errorf("remaining buys = %+v, want only buy@4700", remainingBuys)
	}
	if _, ok := book.BestSellPrice(); ok {
		t.Errorf("expected sells empty")
	}
}

func TestPlace_NoCrossOrderRests(t *testing.T) {
	book, err := NewWithOrders([]domain.Order{
		order(domain.Buy, 5200, 3),
		order(domain.Buy, 5100, 12),
		order(domain.Buy, 4700, 10),
		order(domain.Sell, 5300, 100),
		order(domain.Sell, 5350, 200),
		order(domain.Sell, 5400, 300),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	sell := order(domain.Sell, 5250, 15)
	deals := book.Place(sell)
	if len(deals) != 0 {
		t.Fatalf("expected no deals, got %d", len(deals))
	}

	sells := book.SellOrders()
	wantPrices := []uint64{5250, 5300, 5350, 5400}
	if len(sells) != len(wantPrices) {
		t.Fatalf("sells = %+v, want %d entries", sells, len(wantPrices))
	}
	for i, want := range wantPrices {
		if sells[i].Price != want {
			t.Errorf("sells[%d].Price = %d, want %d", i, sells[i].Price, want)
		}
	}
}

func TestPlace_BetterPricePartialFillThenRest(t *testing.T) {
	book, err := NewWithOrders([]domain.Order{
		order(domain.Sell, 4500, 7),
		order(domain.Sell, 4800, 3),
		order(domain.Sell, 5100, 30),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	buy := order(domain.Buy, 4900, 20)
	deals := book.Place(buy)

	if len(deals) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(deals))
	}
	if deals[0].MakerOrder.Price != 4500 || deals[0].Volume != 7 {
		t.Errorf("deal[0] = %+v, want maker@4500 vol 7", deals[0])
	}
	if deals[1].MakerOrder.Price != 4800 || deals[1].Volume != 3 {
		t.Errorf("deal[1] = %+v, want maker@4800 vol 3", deals[1])
	}

	sells := book.SellOrders()
	if len(sells) != 1 || sells[0].Price != 5100 {
		t.Errorf("remaining sells = %+v, want only sell@5100", sells)
	}
	buys := book.BuyOrders()
	if len(buys) != 1 || buys[0].Volume != 10 {
		t.Errorf("remaining buys = %+v, want buy with volume 10", buys)
	}
}

func TestCancel_RoundTrip(t *testing.T) {
	book := New()
	placed := order(domain.Buy, 1000, 5)
	book.Place(placed)

	if err := book.Cancel(placed.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, ok := book.Get(placed.ID); ok {
		t.Errorf("order still resting after cancel")
	}
	if err := book.Cancel(placed.ID); err != ErrOrderNotFound {
		t.Errorf("second cancel err = %v, want ErrOrderNotFound", err)
	}
}

func TestCancel_RemovesExactlyOne(t *testing.T) {
	book := New()
	a := order(domain.Buy, 1000, 5)
	b := order(domain.Buy, 1000, 7)
	book.Place(a)
	book.Place(b)

	if err := book.Cancel(a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := book.Get(a.ID); ok {
		t.Errorf("cancelled order still present")
	}
	remaining, ok := book.Get(b.ID)
	if !ok || remaining.Volume != 7 {
		t.Errorf("untouched order changed: %+v", remaining)
	}
}

func TestChangeVolume(t *testing.T) {
	book := New()
	o := order(domain.Buy, 1000, 5)
	book.Place(o)

	if err := book.ChangeVolume(o.ID, 0); err != ErrZeroVolume {
		t.Errorf("err = %v, want ErrZeroVolume", err)
	}
	if err := book.ChangeVolume(uuid.New(), 3); err != ErrOrderNotFound {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
	if err := book.ChangeVolume(o.ID, 9); err != nil {
		t.Fatalf("change: %v", err)
	}
	got, ok := book.Get(o.ID)
	if !ok || got.Volume != 9 {
		t.Errorf("got %+v, want volume 9", got)
	}
}

func TestChangeVolume_KeepsTimePriority(t *testing.T) {
	book := New()
	first := order(domain.Buy, 1000, 5)
	second := order(domain.Buy, 1000, 5)
	book.Place(first)
	book.Place(second)

	if err := book.ChangeVolume(first.ID, 50); err != nil {
		t.Fatalf("change: %v", err)
	}

	incoming := order(domain.Sell, 1000, 5)
	deals := book.Place(incoming)
	if len(deals) != 1 || deals[0].MakerOrder.ID != first.ID {
		t.Fatalf("deals = %+v, want the earlier order to fill first despite its larger volume", deals)
	}
}

func TestNewWithOrders_RejectsCrossingSet(t *testing.T) {
	_, err := NewWithOrders([]domain.Order{
		order(domain.Buy, 1000, 5),
		order(domain.Sell, 900, 5),
	})
	if err != ErrWouldMatch {
		t.Errorf("err = %v, want ErrWouldMatch", err)
	}
}

func TestPlace_TieBreakSamePriceFIFO(t *testing.T) {
	book := New()
	a := order(domain.Sell, 1000, 3)
	b := order(domain.Sell, 1000, 3)
	c := order(domain.Sell, 1000, 3)
	book.Place(a)
	book.Place(b)
	book.Place(c)

	deals := book.Place(order(domain.Buy, 1000, 4))
	if len(deals) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(deals))
	}
	if deals[0].MakerOrder.ID != a.ID || deals[0].Volume != 3 {
		t.Errorf("deal[0] = %+v, want a fully consumed first", deals[0])
	}
	if deals[1].MakerOrder.ID != b.ID || deals[1].Volume != 1 {
		t.Errorf("deal[1] = %+v, want b partially consumed second", deals[1])
	}
	remaining, ok := book.Get(c.ID)
	if !ok || remaining.Volume != 3 {
		t.Errorf("c should be untouched, got %+v", remaining)
	}
}
