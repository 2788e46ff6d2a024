// Package httpapi implements the gateway's HTTP surface: POST
// /story/snapshot and POST /figment/:story_id/new, wiring the scheduler
// collection and cache behind a gin router.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	jsoniter "github.com/json-iterator/go"

	"github.com/storium/figmentator/internal/cache"
	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/rng"
	"github.com/storium/figmentator/internal/schedulers"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// App wires the scheduler collection and cache into a gin router. It
// holds no state of its own beyond those two collaborators.
type App struct {
	logger     hclog.Logger
	schedulers *schedulers.Collection
	cache      cache.Store
}

// New constructs an App.
func New(logger hclog.Logger, collection *schedulers.Collection, store cache.Store) *App {
	return &App{logger: logger, schedulers: collection, cache: store}
}

// Router builds the gin.Engine serving the two routes, with the
// compressible-body middleware applied ahead of both handlers.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CompressibleBody())

	r.POST("/story/snapshot", a.handleSnapshot)
	r.POST("/figment/:story_id/new", a.handleNewFigment)
	return r
}

type snapshotRequest struct {
	StoryID string                 `json:"story_id"`
	Story   map[string]interface{} `json:"story"`
}

func cacheKey(t figmodel.SuggestionType, storyID string) string {
	return fmt.Sprintf("%s:%s", t, storyID)
}

func writeJSON(c *gin.Context, status int, v interface{}) {
	body, err := api.Marshal(v)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func writeError(c *gin.Context, status int, message string) {
	writeJSON(c, status, gin.H{"message": message})
}

// handleSnapshot implements POST /story/snapshot: for every registered
// suggestion type, fetch the prior blob, preprocess, and store the
// result, all concurrently. If no models are registered, 406.
func (a *App) handleSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := api.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	types := a.schedulers.Types()
	if len(types) == 0 {
		writeError(c, http.StatusNotAcceptable, "no figmentators installed")
		return
	}

	ctx := c.Request.Context()
	errs := make([]error, len(types))

	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		go func(i int, t figmodel.SuggestionType) {
			defer wg.Done()
			errs[i] = a.snapshotOne(ctx, t, req)
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			a.logger.Error("story snapshot failed", "error", err)
			writeError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	c.Status(http.StatusOK)
}

// snapshotOne fetches t's prior preprocessed blob for req.StoryID (if
// any), runs the suggestion type's model's Preprocess over the story,
// and stores the result under "{suggestion_type}:{story_id}".
func (a *App) snapshotOne(ctx context.Context, t figmodel.SuggestionType, req snapshotRequest) error {
	sched, ok := a.schedulers.Get(t)
	if !ok {
		return fmt.Errorf("httpapi: no scheduler registered for suggestion type %q", t)
	}

	key := cacheKey(t, req.StoryID)

	prior, _, err := a.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("httpapi: fetching prior snapshot for %q: %w", key, err)
	}

	blob, err := sched.Preprocess(ctx, req.Story, prior)
	if err != nil {
		return fmt.Errorf("httpapi: preprocessing %q: %w", key, err)
	}

	if err := a.cache.Set(ctx, key, blob); err != nil {
		return fmt.Errorf("httpapi: storing snapshot for %q: %w", key, err)
	}
	return nil
}

// handleNewFigment implements POST /figment/:story_id/new: drive the
// suggestion type's scheduler over the cached preprocessed blob and
// return the mutated SceneEntry, mapping FigmentStatus to an HTTP
// status.
func (a *App) handleNewFigment(c *gin.Context) {
	storyID := c.Param("story_id")
	suggestionType := figmodel.SuggestionType(c.Query("suggestion_type"))

	sched, ok := a.schedulers.Get(suggestionType)
	if !ok {
		writeError(c, http.StatusNotAcceptable, fmt.Sprintf("no model configured for suggestion type %q", suggestionType))
		return
	}

	var fcRange *rng.Range
	if header := c.GetHeader("Range"); header != "" {
		parsed, err := rng.Parse(header)
		if err != nil {
			writeError(c, http.StatusRequestedRangeNotSatisfiable, err.Error())
			return
		}
		fcRange = &parsed
	}

	ctx := c.Request.Context()
	key := cacheKey(suggestionType, storyID)
	data, found, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Error("cache lookup failed", "key", key, "error", err)
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, fmt.Sprintf("no snapshot cached for story %q", storyID))
		return
	}

	var entry figmodel.SceneEntry
	if err := api.NewDecoder(c.Request.Body).Decode(&entry); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	fc := &figmodel.FigmentContext{
		Status: figmodel.StatusPending,
		Range:  fcRange,
		Entry:  entry.Clone(),
		Data:   data,
	}

	result, err := sched.Figmentate(ctx, fc)
	if err != nil {
		a.logger.Error("figmentate failed", "suggestion_type", suggestionType, "story_id", storyID, "error", err)
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(c, statusCode(result.Status), result.Entry)
}

// statusCode maps a FigmentStatus to its HTTP status.
func statusCode(status figmodel.FigmentStatus) int {
	switch status {
	case figmodel.StatusCompleted:
		return http.StatusOK
	case figmodel.StatusPartial:
		return http.StatusPartialContent
	case figmodel.StatusFailed:
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}
