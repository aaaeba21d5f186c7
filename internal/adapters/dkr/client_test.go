package dkr_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type pageServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newPageServer(pages map[string]string, statuses map[string]int) *pageServer {
	ps := &pageServer{hits: map[string]int{}}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.hits[r.URL.Path]++
		ps.mu.Unlock()

		if status, ok := statuses[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(pages[r.URL.Path]))
	}))
	return ps
}

func (ps *pageServer) hitCount(path string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.hits[path]
}

func newClient(t *testing.T, srv *pageServer, opts ...dkr.Option) *dkr.Client {
	t.Helper()
	opts = append([]dkr.Option{
		dkr.WithBaseURL(srv.URL),
		dkr.WithCacheDir(t.TempDir()),
		dkr.WithRequestDelay(0),
	}, opts...)
	c, err := dkr.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	Convey("A fetched page is served from cache on the next call", t, func() {
		srv := newPageServer(map[string]string{
			"/":     "home",
			"/page": "<html>body</html>",
		}, nil)
		defer srv.Close()
		c := newClient(t, srv)

		first, err := c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		So(first, ShouldEqual, "<html>body</html>")

		second, err := c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		So(second, ShouldEqual, first)
		So(srv.hitCount("/page"), ShouldEqual, 1)
	})

	Convey("Missing pages are cached negatively", t, func() {
		srv := newPageServer(map[string]string{"/": "home"},
			map[string]int{"/gone": http.StatusNotFound})
		defer srv.Close()
		c := newClient(t, srv)

		_, err := c.Fetch(ctx, srv.URL+"/gone")
		So(errors.Is(err, dkr.ErrNotFound), ShouldBeTrue)

		_, err = c.Fetch(ctx, srv.URL+"/gone")
		So(errors.Is(err, dkr.ErrNotFound), ShouldBeTrue)
		So(srv.hitCount("/gone"), ShouldEqual, 1)
	})

	Convey("A server error is treated like a missing page", t, func() {
		srv := newPageServer(map[string]string{"/": "home"},
			map[string]int{"/broken": http.StatusInternalServerError})
		defer srv.Close()
		c := newClient(t, srv)

		_, err := c.Fetch(ctx, srv.URL+"/broken")
		So(errors.Is(err, dkr.ErrNotFound), ShouldBeTrue)
	})

	Convey("An expired cache entry is refetched", t, func() {
		srv := newPageServer(map[string]string{
			"/":     "home",
			"/page": "fresh",
		}, nil)
		defer srv.Close()
		c := newClient(t, srv, dkr.WithCacheTTL(0))

		_, err := c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		_, err = c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		So(srv.hitCount("/page"), ShouldEqual, 2)
	})

	Convey("An empty 200 body reports the expired session", t, func() {
		srv := newPageServer(map[string]string{"/": "home", "/empty": ""}, nil)
		defer srv.Close()
		c := newClient(t, srv)

		_, err := c.Fetch(ctx, srv.URL+"/empty")
		So(errors.Is(err, dkr.ErrEmptyBody), ShouldBeTrue)
	})

	Convey("ClearCache forces the next fetch back to the network", t, func() {
		srv := newPageServer(map[string]string{"/": "home", "/page": "body"}, nil)
		defer srv.Close()
		c := newClient(t, srv)

		_, err := c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		So(c.ClearCache(), ShouldBeNil)

		_, err = c.Fetch(ctx, srv.URL+"/page")
		So(err, ShouldBeNil)
		So(srv.hitCount("/page"), ShouldEqual, 2)
	})
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Leaderboard fetches the variant URL and parses the board", t, func() {
		page := `<table class="table-striped"><tbody>
<tr><th class="id-field">1</th>
    <td><a class="reset-link-color" href="/players/Speedy/">Speedy</a></td>
    <td class="time-field"><strong class="top-time">00:49:00</strong></td></tr>
</tbody></table>`
		srv := newPageServer(map[string]string{
			"/": "home",
			"/tracks/ancient-lake/car/standard/3-laps": page,
		}, nil)
		defer srv.Close()
		c := newClient(t, srv)

		v := model.TrackVariant{
			Slug:     "ancient-lake",
			Vehicle:  model.VehicleCar,
			Category: model.CategoryStandard,
			Laps:     model.LapsThree,
		}
		entries, err := c.Leaderboard(ctx, v)

		So(err, ShouldBeNil)
		So(entries, ShouldHaveLength, 1)
		So(entries[0].Username, ShouldEqual, "Speedy")
		So(entries[0].TimeCS, ShouldEqual, 4900)
	})
}
