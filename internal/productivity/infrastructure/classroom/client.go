package classroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL  = "https://classroom.googleapis.com/v1"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultTimeout  = 15 * time.Second
	maxParallel     = 4
)

// ErrNotConfigured is returned when no refresh token is available.
var ErrNotConfigured = errors.New("classroom: credentials not configured")

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("classroom: service unavailable")

// Config configures the Classroom client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	Timeout      time.Duration
	// Location is the zone Classroom due dates and times are read in.
	// Defaults to UTC.
	Location *time.Location
}

// Client reads the signed-in student's courses, coursework and submissions.
type Client struct {
	http     *http.Client
	baseURL  string
	location *time.Location
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
}

var _ task.CourseworkSource = (*Client)(nil)

// NewClient builds a client that exchanges the refresh token for access
// tokens on demand.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.RefreshToken) == "" {
		return nil, ErrNotConfigured
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	oauthCfg := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: source,
		},
	}
	return NewClientWithHTTP(httpClient, cfg.BaseURL, cfg.Location, logger), nil
}

// NewClientWithHTTP builds a client on an already authorized HTTP client.
func NewClientWithHTTP(httpClient *http.Client, baseURL string, loc *time.Location, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	c := &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		location: loc,
		logger:   logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "classroom",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var status *statusError
			// Client errors say nothing about the health of the service.
			return err == nil || (errors.As(err, &status) && status.code < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

type course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type timeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type courseWork struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	WorkType    string     `json:"workType"`
	DueDate     *date      `json:"dueDate"`
	DueTime     *timeOfDay `json:"dueTime"`
}

type submission struct {
	CourseWorkID string `json:"courseWorkId"`
	State        string `json:"state"`
}

// FetchCoursework lists active courses, then reads each course's coursework
// and turned-in submissions concurrently.
func (c *Client) FetchCoursework(ctx context.Context) ([]task.Coursework, error) {
	courses, err := c.listCourses(ctx)
	if err != nil {
		return nil, err
	}

	perCourse := make([][]task.Coursework, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, crs := range courses {
		g.Go(func() error {
			items, err := c.fetchCourse(gctx, crs)
			if err != nil {
				return fmt.Errorf("course %s: %w", crs.ID, err)
			}
			perCourse[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []task.Coursework
	for _, items := range perCourse {
		out = append(out, items...)
	}
	c.logger.Debug("classroom coursework fetched", "courses", len(courses), "items", len(out))
	return out, nil
}

func (c *Client) fetchCourse(ctx context.Context, crs course) ([]task.Coursework, error) {
	var (
		works       []courseWork
		submissions map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		works, err = c.listCourseWork(gctx, crs.ID)
		return err
	})
	g.Go(func() error {
		var err error
		submissions, err = c.listTurnedIn(gctx, crs.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]task.Coursework, 0, len(works))
	for _, w := range works {
		state := task.SubmissionNew
		if s, ok := submissions[w.ID]; ok && s != "" {
			state = task.SubmissionStatus(s)
		}
		items = append(items, task.Coursework{
			Title:       w.Title,
			Description: w.Description,
			DueDate:     c.dueDate(w.DueDate, w.DueTime),
			Details: task.ClassroomDetails{
				CourseWorkID: w.ID,
				CourseID:     crs.ID,
				CourseName:   crs.Name,
				GradeWeight:  task.DefaultGradeWeight,
				WorkType:     value_objects.ParseWorkType(w.WorkType),
				Submission:   state,
			},
		})
	}
	return items, nil
}

// dueDate combines Classroom's split date and time. A missing time means the
// end of the day.
func (c *Client) dueDate(d *date, t *timeOfDay) *time.Time {
	if d == nil || d.Year == 0 || d.Month == 0 || d.Day == 0 {
		return nil
	}
	hour, minute := 23, 59
	if t != nil {
		hour, minute = t.Hours, t.Minutes
	}
	due := time.Date(d.Year, time.Month(d.Month), d.Day, hour, minute, 0, 0, c.location)
	return &due
}

func (c *Client) listCourses(ctx context.Context) ([]course, error) {
	var courses []course
	err := c.paginate(ctx, "/courses?courseStates=ACTIVE", func(body []byte) (string, error) {
		var page struct {
			Courses       []course `json:"courses"`
			NextPageToken string   `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return "", err
		}
		courses = append(courses, page.Courses...)
		return page.NextPageToken, nil
	})
	return courses, err
}

func (c *Client) listCourseWork(ctx context.Context, courseID string) ([]courseWork, error) {
	var works []courseWork
	path := fmt.Sprintf("/courses/%s/courseWork?orderBy=%s", url.PathEscape(courseID), url.QueryEscape("dueDate desc"))
	err := c.paginate(ctx, path, func(body []byte) (string, error) {
		var page struct {
			CourseWork    []courseWork `json:"courseWork"`
			NextPageToken string       `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return "", err
		}
		works = append(works, page.CourseWork...)
		return page.NextPageToken, nil
	})
	return works, err
}

// listTurnedIn uses the "-" course work wildcard to read every submission of
// the course in one listing.
func (c *Client) listTurnedIn(ctx context.Context, courseID string) (map[string]string, error) {
	states := make(map[string]string)
	path := fmt.Sprintf("/courses/%s/courseWork/-/studentSubmissions?states=TURNED_IN", url.PathEscape(courseID))
	err := c.paginate(ctx, path, func(body []byte) (string, error) {
		var page struct {
			StudentSubmissions []submission `json:"studentSubmissions"`
			NextPageToken      string       `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return "", err
		}
		for _, s := range page.StudentSubmissions {
			states[s.CourseWorkID] = s.State
		}
		return page.NextPageToken, nil
	})
	return states, err
}

func (c *Client) paginate(ctx context.Context, path string, handle func([]byte) (string, error)) error {
	pageToken := ""
	for {
		target := c.baseURL + path
		if pageToken != "" {
			target += "&pageToken=" + url.QueryEscape(pageToken)
		}
		body, err := c.get(ctx, target)
		if err != nil {
			return err
		}
		next, err := handle(body)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if next == "" {
			return nil
		}
		pageToken = next
	}
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, responseError(resp)
		}
		return io.ReadAll(resp.Body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return body, err
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classroom request failed: status=%d body=%s", e.code, e.body)
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &statusError{code: resp.StatusCode, body: string(body)}
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}
