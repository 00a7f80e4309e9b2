package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus"

    "github.com/iliyamo/live-claims/internal/confirm"
    "github.com/iliyamo/live-claims/internal/database"
    "github.com/iliyamo/live-claims/internal/model"
    "github.com/iliyamo/live-claims/internal/platform"
    "github.com/iliyamo/live-claims/internal/repository"
    "github.com/iliyamo/live-claims/internal/service"
    "github.com/iliyamo/live-claims/internal/state"
)

type noFetch struct{}

func (noFetch) Fetch(context.Context, string) ([]byte, error) {
    return nil, fmt.Errorf("no fetcher in tests")
}

func newTestEngine(t *testing.T) *service.Engine {
    t.Helper()
    db, err := database.OpenSQLite(":memory:")
    if err != nil {
        t.Fatalf("open test db: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })

    coord := state.New(repository.NewSettingsRepo(db))
    if err := coord.Load(context.Background()); err != nil {
        t.Fatalf("load state: %v", err)
    }
    return service.NewEngine(db, coord, confirm.New(time.Minute), platform.NewMemorySurface(), noFetch{}, service.Options{
        AcceptedSignals: []string{"check"},
        Registry:        prometheus.NewRegistry(),
    })
}

func marshalEvent(t *testing.T, ev ClaimSignalEvent) []byte {
    t.Helper()
    body, err := json.Marshal(ev)
    if err != nil {
        t.Fatalf("marshal event: %v", err)
    }
    return body
}

func TestHandleDeliveryMalformedPayloadFails(t *testing.T) {
    engine := newTestEngine(t)
    if err := handleDelivery(engine, []byte("{not json")); err == nil {
        t.Fatal("malformed payload accepted")
    }
}

func TestHandleDeliveryIncompleteEventFails(t *testing.T) {
    engine := newTestEngine(t)
    cases := []ClaimSignalEvent{
        {ParticipantID: 42, ClaimantName: "Ada", Signal: "check"},
        {ListingID: "lst-1", ClaimantName: "Ada", Signal: "check"},
    }
    for _, ev := range cases {
        if err := handleDelivery(engine, marshalEvent(t, ev)); err == nil {
            t.Errorf("incomplete event %+v accepted", ev)
        }
    }
}

func TestHandleDeliveryRejectionAcks(t *testing.T) {
    engine := newTestEngine(t)
    // No session is open, so the engine rejects; the consumer treats
    // that as a handled delivery, not a fault.
    ev := ClaimSignalEvent{ListingID: "lst-1", ParticipantID: 42, ClaimantName: "Ada", Signal: "check"}
    if err := handleDelivery(engine, marshalEvent(t, ev)); err != nil {
        t.Fatalf("rejection surfaced as fault: %v", err)
    }
}

func TestHandleDeliveryCommitsClaim(t *testing.T) {
    engine := newTestEngine(t)
    ctx := context.Background()
    if _, err := engine.StartSession(ctx, "ops", true); err != nil {
        t.Fatalf("start session: %v", err)
    }
    item := model.Item{
        Code: "N001", Category: model.CategoryN, Number: 1,
        WMFilename: "N001_wm.png", RawFilename: "N001_raw.png",
        ListingID: "lst-42",
    }
    if _, err := engine.IngestItems(ctx, []model.Item{item}, false); err != nil {
        t.Fatalf("ingest: %v", err)
    }
    who := model.RegisteredClaimant(42, "Ada")
    if _, err := engine.Grant(ctx, who, "giveaway", 1); err != nil {
        t.Fatalf("grant: %v", err)
    }

    ev := ClaimSignalEvent{ListingID: "lst-42", ParticipantID: 42, ClaimantName: "Ada", Signal: "check"}
    if err := handleDelivery(engine, marshalEvent(t, ev)); err != nil {
        t.Fatalf("handle delivery: %v", err)
    }
    if _, _, err := engine.PickStatus(ctx, who); err == nil {
        t.Fatal("pick entry survived the claim, want it spent")
    }
}
