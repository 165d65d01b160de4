package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"signal-scanner/internal/model"
	"signal-scanner/internal/notification"
	sqlitestore "signal-scanner/internal/store/sqlite"
)

func TestRunCycle_FromRecordedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.db")
	w, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	books := map[string]model.BookTop{
		"AAAUSDT": {Symbol: "AAAUSDT", Bid: 85, Ask: 91.62, TS: t0},
		"BBBUSDT": {Symbol: "BBBUSDT", Bid: 91.6, Ask: 91.62, TS: t0},
	}
	for sym, book := range books {
		if err := w.WriteSeries(ctx, bounceSeries(sym)); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteBookTop(ctx, book); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	r, err := sqlitestore.NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	rec := &recorder{}
	report, err := New(testConfig(), r, rec).RunCycle(ctx)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("outcomes = %+v", report.Outcomes)
	}
	if report.Outcomes[0].Reason != Alerted || report.Outcomes[1].Reason != SkipSpreadFiltered {
		t.Errorf("reasons = %s, %s", report.Outcomes[0].Reason, report.Outcomes[1].Reason)
	}
	msgs := rec.sent()
	if len(msgs) != 1 || msgs[0].Kind != notification.KindAlert || msgs[0].Alert.Symbol != "AAAUSDT" {
		t.Errorf("sent = %+v", msgs)
	}
}
