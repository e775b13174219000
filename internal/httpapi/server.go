// Package httpapi exposes the judging core's plain-JSON HTTP surface: a
// liveness probe and a synchronous submit endpoint, for callers that don't
// want the gRPC surface in internal/judgerpc.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/rlimit"
)

// submitRequest is the JSON body POST /api/submit accepts.
type submitRequest struct {
	SubmissionID      string        `json:"submission_id"`
	Interactive       bool          `json:"interactive"`
	ContestantProgram string        `json:"contestant_program"`
	ContestantArgs    []string      `json:"contestant_args"`
	ContestantLimits  rlimit.Config `json:"contestant_limits"`
	InteractorProgram string        `json:"interactor_program"`
	InputPath         string        `json:"input_path"`
	AnswerPath        string        `json:"answer_path"`
	CheckerProgram    string        `json:"checker_program"`
	WorkDir           string        `json:"work_dir"`
}

// zapLogger logs each request the way the teacher's ZapLogger middleware
// does: one line per request, leveled by response status.
func zapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		joinedErr := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}
		if joinedErr != nil {
			fields = append(fields, zap.Error(joinedErr))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// NewRouter builds the gin engine serving /healthz and /api/submit against
// service. devCORS enables the permissive dev CORS policy; leave false in
// production deployments.
func NewRouter(service *judge.Service, log *zap.Logger, devCORS bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())
	if devCORS {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(zapLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/submit", func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if req.ContestantProgram == "" || req.InputPath == "" || req.AnswerPath == "" || req.CheckerProgram == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "contestant_program, input_path, answer_path and checker_program are required"})
			return
		}

		var session *judge.Session
		var err error
		if req.Interactive {
			session, err = service.SubmitInteractive(req.SubmissionID, judge.InteractiveTask{
				ContestantProgram: req.ContestantProgram,
				ContestantArgs:    req.ContestantArgs,
				ContestantLimits:  req.ContestantLimits,
				InteractorProgram: req.InteractorProgram,
				InputPath:         req.InputPath,
				AnswerPath:        req.AnswerPath,
				CheckerProgram:    req.CheckerProgram,
				WorkDir:           req.WorkDir,
			})
		} else {
			session, err = service.SubmitBatch(req.SubmissionID, judge.BatchTask{
				ContestantProgram: req.ContestantProgram,
				ContestantArgs:    req.ContestantArgs,
				ContestantLimits:  req.ContestantLimits,
				InputPath:         req.InputPath,
				AnswerPath:        req.AnswerPath,
				CheckerProgram:    req.CheckerProgram,
				WorkDir:           req.WorkDir,
			})
		}
		switch err {
		case nil:
		case judge.ErrShutdown:
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
			return
		case judge.ErrSubmissionAlreadyExists:
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}

		result, err := session.Wait(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	return r
}

// DevelopmentLogger builds a zap logger matching the teacher's terse
// development console encoding, for callers that don't bring their own.
func DevelopmentLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	return cfg.Build()
}
