package trackerserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gw "github.com/gorilla/websocket"

	ordermapper "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/watcher"
	apierrors "github.com/Apurer/go-shipment-tracker/internal/shared/errors"
)

const (
	feedBuffer       = 64
	feedWriteTimeout = 10 * time.Second
)

// FeedAPI streams list watcher events over a websocket. Every connection owns its
// own watcher, so clients never share a snapshot.
type FeedAPI struct {
	fetcher   watcher.ListFetcher
	interval  time.Duration
	logger    *slog.Logger
	upgrader  gw.Upgrader
	responder *apierrors.ChainedResponder
}

// NewFeedAPI builds the feed handler. A non-positive interval uses the list watcher default.
func NewFeedAPI(fetcher watcher.ListFetcher, interval time.Duration, logger *slog.Logger) FeedAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return FeedAPI{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		upgrader: gw.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		responder: NewProblemResponder(),
	}
}

// Get /api/orders/feed
// Live status changes for the orders matching the query filter
func (api *FeedAPI) StreamOrders(c *gin.Context) {
	filter, err := ordermapper.FilterFromQuery(c.Request.URL.Query())
	if err == nil {
		err = filter.Normalize().Validate()
	}
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	conn, err := api.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan ordermapper.FeedEvent, feedBuffer)
	sink := watcher.SinkFunc(func(tickCtx context.Context, e watcher.Event) {
		select {
		case out <- ordermapper.FromWatcherEvent(e):
		case <-tickCtx.Done():
		case <-ctx.Done():
		}
	})
	w := watcher.NewListWatcher(api.fetcher, sink,
		watcher.WithFilter(filter),
		watcher.WithInterval(api.interval),
		watcher.WithLogger(api.logger),
	)
	w.Refresh()
	w.Start(ctx)

	go api.readCommands(ctx, cancel, conn, w)
	api.writeEvents(ctx, conn, out)

	cancel()
	w.Stop()
	_ = conn.Close()
}

func (api *FeedAPI) readCommands(ctx context.Context, cancel context.CancelFunc, conn *gw.Conn, w *watcher.ListWatcher) {
	defer cancel()
	for {
		var cmd ordermapper.FeedCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Action {
		case ordermapper.FeedActionRefresh:
			w.Refresh()
		case ordermapper.FeedActionFilter:
			filter, err := ordermapper.FilterFromQuery(cmd.QueryValues())
			if err == nil {
				err = filter.Normalize().Validate()
			}
			if err != nil {
				api.logger.LogAttrs(ctx, slog.LevelWarn, "feed filter rejected", slog.String("error", err.Error()))
				continue
			}
			w.ApplyFilter(filter)
		}
	}
}

func (api *FeedAPI) writeEvents(ctx context.Context, conn *gw.Conn, out <-chan ordermapper.FeedEvent) {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(gw.CloseMessage, gw.FormatCloseMessage(gw.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case event := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				api.logger.LogAttrs(ctx, slog.LevelDebug, "feed write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
