package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/generator"
	"github.com/adanyl0v/studyboard/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleIssueAuthCode(c *gin.Context)
	HandleGetSessions(c *gin.Context)
	HandleDeleteSession(c *gin.Context)
	HandleHome(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetBoard(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleCompleteTask(c *gin.Context)
	HandleIncompleteTask(c *gin.Context)
	HandleMoveTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleGenerateTasks(c *gin.Context)

	HandleCreateLap(c *gin.Context)
	HandleGetLaps(c *gin.Context)
	HandleUpdateLap(c *gin.Context)
	HandleDeleteLap(c *gin.Context)
	HandleLapStream(c *gin.Context)

	HandleCreateWorkspace(c *gin.Context)
	HandleGetWorkspaces(c *gin.Context)
	HandleUpdateWorkspace(c *gin.Context)
	HandleDeleteWorkspace(c *gin.Context)

	HandleGetPreferences(c *gin.Context)
	HandleSavePreferences(c *gin.Context)

	HandleGetStats(c *gin.Context)
	HandleGetTaskStats(c *gin.Context)

	HandleHealth(c *gin.Context)
}

// Generator suggests tasks for a free-form prompt.
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string, now time.Time, loc *time.Location) ([]generator.Candidate, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Auth        services.AuthService
	Sessions    services.SessionService
	Tasks       services.TaskService
	Laps        services.LapService
	Workspaces  services.WorkspaceService
	Preferences services.PreferenceService
	Board       services.BoardService
	Stats       services.StatsService
}

type Options struct {
	Generator Generator
	Events    events.Subscriber
	Pinger    Pinger
	// RedirectURL is where /home sends the browser after a code exchange.
	RedirectURL string
	Now         func() time.Time
}

type handlerImpl struct {
	logger      zerolog.Logger
	auth        services.AuthService
	sessions    services.SessionService
	tasks       services.TaskService
	laps        services.LapService
	workspaces  services.WorkspaceService
	preferences services.PreferenceService
	board       services.BoardService
	stats       services.StatsService

	generator   Generator
	events      events.Subscriber
	pinger      Pinger
	redirectURL string
	now         func() time.Time
}

func New(
	logger zerolog.Logger,
	svc Services,
	opts Options,
) Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = "/"
	}

	return &handlerImpl{
		logger:      logger,
		auth:        svc.Auth,
		sessions:    svc.Sessions,
		tasks:       svc.Tasks,
		laps:        svc.Laps,
		workspaces:  svc.Workspaces,
		preferences: svc.Preferences,
		board:       svc.Board,
		stats:       svc.Stats,
		generator:   opts.Generator,
		events:      opts.Events,
		pinger:      opts.Pinger,
		redirectURL: opts.RedirectURL,
		now:         opts.Now,
	}
}
