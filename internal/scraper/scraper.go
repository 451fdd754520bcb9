// Package scraper drives an authenticated browser session through the ERP
// portal and turns the rendered attendance listing into a snapshot.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"attendance_bot/internal/browser"
	"attendance_bot/internal/model"
)

// Scrape failure kinds. Both render to users as a generic "could not fetch";
// they are kept apart for diagnostics only.
var (
	// ErrAuthenticationLost means the portal rejected the session even
	// after one re-login.
	ErrAuthenticationLost = errors.New("authentication lost")
	// ErrDataNotFound means the attendance table never appeared within
	// the timeout.
	ErrDataNotFound = errors.New("attendance data not found")
)

const (
	loginPath      = "/login.html"
	attendancePath = "/studentCourseFileNew.htm?shwA=%2700A%27"

	// The portal redirects any unauthenticated request back to the login
	// page; its presence in the location is the only session signal the
	// site exposes.
	loginRedirectMarker = "login.htm"
	loginFailureMarker  = "login.htm?failure=true"

	rowSelector   = "#attendanceDiv table tbody tr"
	tableSelector = "#attendanceDiv table"
)

var (
	usernameField = browser.Textbox("Enter username")
	passwordField = browser.Textbox("Enter password")
	loginButton   = browser.Button("Login")
)

type sessionStatus int

const (
	sessionValid sessionStatus = iota
	sessionExpired
)

// Scraper fetches attendance snapshots through an automated browser.
type Scraper struct {
	browser      browser.Browser
	baseURL      string
	tableTimeout time.Duration
	log          *slog.Logger
}

// New creates a Scraper for the portal at baseURL.
func New(b browser.Browser, baseURL string, log *slog.Logger) *Scraper {
	return &Scraper{
		browser:      b,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tableTimeout: 15 * time.Second,
		log:          log,
	}
}

// SetTableTimeout overrides the default 15-second wait for the attendance
// table to materialize.
func (s *Scraper) SetTableTimeout(d time.Duration) {
	s.tableTimeout = d
}

// Attendance logs in with the given credentials and returns the current
// attendance snapshot. A session rejected on the listing page is re-logged-in
// exactly once; a second rejection fails with ErrAuthenticationLost. The
// browser session is released on every exit path. Callers own any outer
// retry policy.
func (s *Scraper) Attendance(ctx context.Context, username, password string) (model.Snapshot, error) {
	sess, err := s.browser.NewSession(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("open browser session: %w", err)
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Navigate(ctx, s.baseURL+loginPath); err != nil {
		return model.Snapshot{}, fmt.Errorf("open login page: %w", err)
	}
	if err := s.submitLogin(ctx, sess, username, password); err != nil {
		return model.Snapshot{}, err
	}

	if err := s.openListing(ctx, sess); err != nil {
		return model.Snapshot{}, err
	}

	status, err := s.checkSession(ctx, sess)
	if err != nil {
		return model.Snapshot{}, err
	}
	if status == sessionExpired {
		// The redirect landed us back on the login page; authenticate
		// again and retry the listing once.
		s.log.Debug("session expired, re-authenticating", "user", username)
		if err := s.submitLogin(ctx, sess, username, password); err != nil {
			return model.Snapshot{}, err
		}
		if err := s.openListing(ctx, sess); err != nil {
			return model.Snapshot{}, err
		}
		status, err = s.checkSession(ctx, sess)
		if err != nil {
			return model.Snapshot{}, err
		}
		if status == sessionExpired {
			return model.Snapshot{}, fmt.Errorf("login rejected after retry: %w", ErrAuthenticationLost)
		}
	}

	if err := sess.WaitVisible(ctx, rowSelector, s.tableTimeout); err != nil {
		return model.Snapshot{}, fmt.Errorf("wait for attendance table: %w", ErrDataNotFound)
	}

	html, err := sess.OuterHTML(ctx, tableSelector)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read attendance table: %w", err)
	}
	return Extract(html)
}

// VerifyLogin checks whether the credentials are accepted by the portal.
// It performs the login steps only and inspects the resulting location:
// success is the absence of the portal's failure redirect marker. Any
// internal failure maps to false; VerifyLogin never returns an error.
func (s *Scraper) VerifyLogin(ctx context.Context, username, password string) bool {
	sess, err := s.browser.NewSession(ctx)
	if err != nil {
		s.log.Warn("verify: open browser session", "error", err)
		return false
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Navigate(ctx, s.baseURL+loginPath); err != nil {
		s.log.Warn("verify: open login page", "error", err)
		return false
	}
	if err := s.submitLogin(ctx, sess, username, password); err != nil {
		s.log.Warn("verify: submit login", "error", err)
		return false
	}

	loc, err := sess.Location(ctx)
	if err != nil {
		s.log.Warn("verify: read location", "error", err)
		return false
	}
	return !strings.Contains(loc, loginFailureMarker)
}

// submitLogin fills and submits the login form on the current page.
func (s *Scraper) submitLogin(ctx context.Context, sess browser.Session, username, password string) error {
	if err := sess.Fill(ctx, usernameField, username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := sess.Fill(ctx, passwordField, password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := sess.Click(ctx, loginButton); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := sess.WaitLoaded(ctx); err != nil {
		return fmt.Errorf("wait after login: %w", err)
	}
	return nil
}

func (s *Scraper) openListing(ctx context.Context, sess browser.Session) error {
	if err := sess.Navigate(ctx, s.baseURL+attendancePath); err != nil {
		return fmt.Errorf("open attendance listing: %w", err)
	}
	if err := sess.WaitLoaded(ctx); err != nil {
		return fmt.Errorf("wait for attendance listing: %w", err)
	}
	return nil
}

// checkSession derives the session state from the post-navigation location.
func (s *Scraper) checkSession(ctx context.Context, sess browser.Session) (sessionStatus, error) {
	loc, err := sess.Location(ctx)
	if err != nil {
		return sessionValid, fmt.Errorf("read location: %w", err)
	}
	if strings.Contains(loc, loginRedirectMarker) {
		return sessionExpired, nil
	}
	return sessionValid, nil
}
