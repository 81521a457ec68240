package atlas

import (
	"errors"
	"sync"
	"testing"

	"gwmap/utils/requests"
	"gwmap/worldmap"
)

const docOne = `{
	"Heists": {
		"color": "#ff0000",
		"locations": [
			{ "lat": "1", "lng": "1", "name": "Vault" },
			{ "lat": "2", "lng": "2", "name": "Meth Lab" }
		]
	}
}`

const docTwo = `{
	"Shops": {
		"color": "#00ff00",
		"locations": [
			{ "lat": "3", "lng": "3", "name": "Ammo Store" }
		]
	}
}`

func TestLoadDataReplacesWholesale(t *testing.T) {
	a := New()
	l := NewLoader(a)

	payload := docOne
	l.SetFetcher(func(url string) ([]byte, error) {
		return []byte(payload), nil
	})

	if err := l.LoadData("test://doc"); err != nil {
		t.Fatal(err)
	}

	cats, gen := a.Snapshot()
	if gen != 1 || len(cats) != 1 || cats[0].Name != "Heists" {
		t.Fatalf("unexpected first snapshot: gen=%d cats=%v", gen, cats)
	}

	payload = docTwo
	if err := l.LoadData("test://doc"); err != nil {
		t.Fatal(err)
	}

	cats, gen = a.Snapshot()
	if gen != 2 || len(cats) != 1 || cats[0].Name != "Shops" {
		t.Fatalf("expected the second document to replace the first, got gen=%d cats=%v", gen, cats)
	}
}

func TestLoadDataTransportFailure(t *testing.T) {
	a := New()
	l := NewLoader(a)
	l.SetFetcher(func(url string) ([]byte, error) {
		return nil, &requests.StatusError{Code: 503, Status: "503 Service Unavailable", URL: url}
	})

	err := l.LoadData("test://down")

	var dle *DataLoadError
	if !errors.As(err, &dle) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}

	var se *requests.StatusError
	if !errors.As(err, &se) || se.Code != 503 {
		t.Errorf("expected the status cause to be preserved, got %v", err)
	}

	if !a.IsEmpty() {
		t.Error("expected nothing installed after a failed load")
	}
}

func TestLoadDataParseFailure(t *testing.T) {
	a := New()
	l := NewLoader(a)

	l.SetFetcher(func(url string) ([]byte, error) {
		return []byte(docOne), nil
	})
	if err := l.LoadData("test://doc"); err != nil {
		t.Fatal(err)
	}

	l.SetFetcher(func(url string) ([]byte, error) {
		return []byte(`{"broken`), nil
	})

	var dle *DataLoadError
	if err := l.LoadData("test://doc"); !errors.As(err, &dle) {
		t.Fatalf("expected DataLoadError for a garbled payload, got %v", err)
	}

	// Previous data must stay installed.
	cats, gen := a.Snapshot()
	if gen != 1 || len(cats) != 1 || cats[0].Name != "Heists" {
		t.Errorf("expected the earlier document to survive, got gen=%d cats=%v", gen, cats)
	}
}

// A slow load that resolves after a newer one started must be discarded, not
// installed over the newer data.
func TestStaleLoadDiscarded(t *testing.T) {
	a := New()
	l := NewLoader(a)

	slowStarted := make(chan struct{})
	release := make(chan struct{})

	l.SetFetcher(func(url string) ([]byte, error) {
		if url == "test://slow" {
			close(slowStarted)
			<-release
			return []byte(docOne), nil
		}

		return []byte(docTwo), nil
	})

	var replaced []uint64
	var mu sync.Mutex
	l.OnReplaced = func(cats []worldmap.Category, gen uint64) {
		mu.Lock()
		replaced = append(replaced, gen)
		mu.Unlock()
	}

	done := make(chan error, 1)
	go func() {
		done <- l.LoadData("test://slow")
	}()

	<-slowStarted
	if err := l.LoadData("test://fast"); err != nil {
		t.Fatal(err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("a stale load should be dropped silently, got %v", err)
	}

	cats, gen := a.Snapshot()
	if gen != 1 || cats[0].Name != "Shops" {
		t.Fatalf("expected the newer document to win, got gen=%d cats=%v", gen, cats)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(replaced) != 1 {
		t.Errorf("expected OnReplaced to fire only for the installed load, got %v", replaced)
	}
}

func TestSnapshotGenerationAdvances(t *testing.T) {
	a := New()

	if !a.IsEmpty() || a.Generation() != 0 {
		t.Fatal("expected a fresh atlas to be empty at generation 0")
	}

	cats, _ := worldmap.ParseDocument([]byte(docOne))
	if gen := a.Replace(cats); gen != 1 {
		t.Errorf("expected generation 1, got %d", gen)
	}
	if gen := a.Replace(cats); gen != 2 {
		t.Errorf("expected generation 2, got %d", gen)
	}
}
