// Package service orchestrates one exercise record submission: loading
// the configured models, validating them against the remote service and
// driving the start/finish protocol in order.
package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/leostudiooo/GOOSE/internal/client"
	"github.com/leostudiooo/GOOSE/internal/config"
	"github.com/leostudiooo/GOOSE/internal/credential"
	"github.com/leostudiooo/GOOSE/internal/profile"
	"github.com/leostudiooo/GOOSE/internal/record"
	"github.com/leostudiooo/GOOSE/internal/route"
	"github.com/leostudiooo/GOOSE/internal/storage"
	"github.com/leostudiooo/GOOSE/internal/track"
)

// Document names under the config directory.
const (
	headersDoc = "headers"
	userDoc    = "user"
	catalogDoc = "route_group"
)

// RecordClient is the slice of the API client the orchestrator drives.
type RecordClient interface {
	CheckTenant(ctx context.Context) error
	CheckToken(ctx context.Context) error
	UploadStartImage(ctx context.Context, image []byte) (string, error)
	UploadFinishImage(ctx context.Context, image []byte) (string, error)
	SubmitStart(ctx context.Context, payload record.StartPayload) (string, error)
	SubmitFinish(ctx context.Context, payload record.FinishPayload) (bool, error)
	ListRoutes(ctx context.Context) ([]route.Route, error)
}

type Service struct {
	fs       afero.Fs
	reporter Reporter
	trackDir string

	headers *storage.Store[profile.SystemHeaders]
	users   *storage.Store[profile.UserProfile]
	catalog *storage.Store[route.Catalog]
	tracks  *storage.Store[track.Track]

	newClient func(h profile.SystemHeaders, token string) RecordClient
}

func NewService(cfg config.Config, reporter Reporter) *Service {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Service{
		fs:       afero.NewOsFs(),
		reporter: reporter,
		trackDir: cfg.TrackDir,
		headers:  storage.NewStore[profile.SystemHeaders](cfg.ConfigDir, storage.YAML),
		users:    storage.NewStore[profile.UserProfile](cfg.ConfigDir, storage.YAML),
		catalog:  storage.NewStore[route.Catalog](cfg.ConfigDir, storage.YAML),
		tracks:   storage.NewStore[track.Track](cfg.TrackDir, storage.JSON),
		newClient: func(h profile.SystemHeaders, token string) RecordClient {
			return client.New(h, token, cfg.BaseURL)
		},
	}
}

// WithFs reroutes all file access through fs.
func (s *Service) WithFs(fs afero.Fs) *Service {
	clone := *s
	clone.fs = fs
	clone.headers = s.headers.WithFs(fs)
	clone.users = s.users.WithFs(fs)
	clone.catalog = s.catalog.WithFs(fs)
	clone.tracks = s.tracks.WithFs(fs)
	return &clone
}

// GetUser loads the stored profile, or a blank template when none has
// been saved yet.
func (s *Service) GetUser() (profile.UserProfile, error) {
	user, err := s.users.Load(userDoc)
	if err == nil {
		return user, nil
	}

	var notFound *storage.NotFoundError
	if errors.As(err, &notFound) {
		s.reporter.Warn("no user profile yet, returning a blank one")
		return profile.UserProfile{}, nil
	}

	return profile.UserProfile{}, &OpError{Desc: "loading user profile", Err: err}
}

func (s *Service) SaveUser(user profile.UserProfile) error {
	if err := s.users.Save(userDoc, user); err != nil {
		return &OpError{Desc: "saving user profile", Err: err}
	}
	return nil
}

func (s *Service) GetRouteNames() ([]string, error) {
	catalog, err := s.catalog.Load(catalogDoc)
	if err != nil {
		return nil, &OpError{Desc: "loading route catalog", Err: err}
	}
	return catalog.Names(), nil
}

// Validated is everything Validate resolved, ready for Upload.
type Validated struct {
	Headers     profile.SystemHeaders
	User        profile.UserProfile
	StudentID   string
	Route       route.Route
	Track       track.Track
	StartImage  []byte
	FinishImage []byte

	client RecordClient
}

// Validate loads and cross-checks every input of a submission, then
// confirms the tenant and token against the live service. It mutates
// nothing remotely.
func (s *Service) Validate(ctx context.Context) (*Validated, error) {
	headers, err := s.headers.Load(headersDoc)
	if err != nil {
		return nil, &OpError{Desc: "loading request headers", Err: err}
	}

	user, err := s.users.Load(userDoc)
	if err != nil {
		return nil, &OpError{Desc: "loading user profile", Err: err}
	}

	claims, err := credential.Decode(user.Token)
	if err != nil {
		return nil, &OpError{Desc: "decoding credential", Err: err}
	}
	studentID, err := claims.StudentID()
	if err != nil {
		return nil, &OpError{Desc: "decoding credential", Err: err}
	}
	s.reporter.Info("credential decoded", "student_id", studentID)

	startImage, err := afero.ReadFile(s.fs, user.StartImage)
	if err != nil {
		return nil, &OpError{Desc: "reading start image", Err: err}
	}
	finishImage, err := afero.ReadFile(s.fs, user.FinishImage)
	if err != nil {
		return nil, &OpError{Desc: "reading finish image", Err: err}
	}

	catalog, err := s.catalog.Load(catalogDoc)
	if err != nil {
		return nil, &OpError{Desc: "loading route catalog", Err: err}
	}
	selected, err := catalog.Get(user.Route)
	if err != nil {
		return nil, &OpError{Desc: "resolving route", Err: err}
	}

	trk, err := s.loadTrack(user)
	if err != nil {
		return nil, &OpError{Desc: "loading track", Err: err}
	}
	s.reporter.Info("track loaded",
		"distance_km", trk.DistanceKm(), "duration_sec", trk.DurationSec())

	api := s.newClient(headers, user.Token)
	if err := api.CheckTenant(ctx); err != nil {
		return nil, &OpError{Desc: "checking tenant", Err: err}
	}
	if err := api.CheckToken(ctx); err != nil {
		return nil, &OpError{Desc: "checking token", Err: err}
	}
	s.reporter.Info("tenant and token accepted", "tenant", headers.Tenant)

	return &Validated{
		Headers:     headers,
		User:        user,
		StudentID:   studentID,
		Route:       selected,
		Track:       trk,
		StartImage:  startImage,
		FinishImage: finishImage,
		client:      api,
	}, nil
}

// loadTrack picks the user's own track file when enabled, the default
// per-route one otherwise.
func (s *Service) loadTrack(user profile.UserProfile) (track.Track, error) {
	store := s.tracks
	name := user.Route

	if user.CustomTrack.Enable {
		dir, file := filepath.Split(user.CustomTrack.FilePath)
		store = store.WithDir(filepath.Clean(dir))
		name = strings.TrimSuffix(file, filepath.Ext(file))
	}
	return store.Load(name)
}

// Upload validates, then runs the submission strictly in order: start
// image, start record, finish image, finish record. A failure after the
// start record is reported with the dangling record id; nothing is
// rolled back.
func (s *Service) Upload(ctx context.Context) error {
	v, err := s.Validate(ctx)
	if err != nil {
		return &OpError{Desc: "uploading exercise record", Err: err}
	}

	ex := record.DeriveExercise(v.User.DateTime.Time, v.Track.DistanceKm(), v.Track.DurationSec())
	s.reporter.Info("metrics derived",
		"distance", ex.DistanceKm, "pace", ex.Pace, "calorie", ex.Calorie)

	startURL, err := v.client.UploadStartImage(ctx, v.StartImage)
	if err != nil {
		return &OpError{Desc: "uploading exercise record", Err: err}
	}

	start := record.NewStartPayload(v.Route, v.StudentID, ex, startURL)
	recordID, err := v.client.SubmitStart(ctx, start)
	if err != nil {
		return &OpError{Desc: "uploading exercise record", Err: err}
	}
	s.reporter.Info("record started", "record_id", recordID)

	finishURL, err := v.client.UploadFinishImage(ctx, v.FinishImage)
	if err != nil {
		return s.dangling(recordID, err)
	}

	trackJSON, err := v.Track.PointsJSON()
	if err != nil {
		return s.dangling(recordID, err)
	}

	finish := start.Finish(ex, trackJSON, finishURL, recordID)
	if _, err := v.client.SubmitFinish(ctx, finish); err != nil {
		return s.dangling(recordID, err)
	}

	s.reporter.Info("record finished", "record_id", recordID)
	return nil
}

func (s *Service) dangling(recordID string, err error) error {
	s.reporter.Error("record left unfinished on the server", "record_id", recordID)
	return &OpError{
		Desc: "uploading exercise record",
		Err:  &DanglingRecordError{RecordID: recordID, Err: err},
	}
}

// FetchRoutes pulls the route definitions the service currently offers
// and saves them as the local catalog.
func (s *Service) FetchRoutes(ctx context.Context) ([]route.Route, error) {
	headers, err := s.headers.Load(headersDoc)
	if err != nil {
		return nil, &OpError{Desc: "fetching route definitions", Err: err}
	}
	user, err := s.users.Load(userDoc)
	if err != nil {
		return nil, &OpError{Desc: "fetching route definitions", Err: err}
	}

	routes, err := s.newClient(headers, user.Token).ListRoutes(ctx)
	if err != nil {
		return nil, &OpError{Desc: "fetching route definitions", Err: err}
	}

	if err := s.catalog.Save(catalogDoc, route.Catalog{Routes: routes}); err != nil {
		return nil, &OpError{Desc: "fetching route definitions", Err: err}
	}
	s.reporter.Info("route catalog refreshed", "routes", len(routes))
	return routes, nil
}
