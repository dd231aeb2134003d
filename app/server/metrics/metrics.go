// Package metrics Prometheus 指标导出
package metrics

import (
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"line-auth/app/server/errs"
	"net/http"
	"strconv"
	"time"
)

const namespace = "line_auth"

// 认证事件
const (
	EventRegister       = "register"
	EventLogin          = "login"
	EventChangePassword = "change_password"
	EventChangeRole     = "change_role"
	EventResetPassword  = "reset_password"
	EventSetStatus      = "set_status"
)

type Metrics struct {
	registry *prometheus.Registry

	AuthEvents          *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New 创建指标实例，使用独立的 registry ，便于测试时多次创建
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AuthEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total authentication events by result",
			},
			[]string{"event", "result"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Auth 记录一次认证事件， result 由错误类型决定
func (m *Metrics) Auth(event string, err error) {
	m.AuthEvents.WithLabelValues(event, Result(err)).Inc()
}

// Result 把错误归类为低基数的标签值
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errs.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, errs.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, errs.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, errs.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, errs.ErrForbidden):
		return "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, errs.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

// Handler 返回 Prometheus HTTP Handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware 记录请求耗时，路由使用 echo 的路由模板以避免高基数
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}
