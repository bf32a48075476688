package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

const alertJobLockKey = "dotacion:alerts:job"

// AlertJobConfig configuración del job periódico de alertas.
type AlertJobConfig struct {
	Interval time.Duration
	// LockTTL tiempo máximo que una instancia retiene el lock.
	LockTTL time.Duration
}

// AlertJob recalcula las alertas periódicamente y deja el resumen en el log.
// Con varias réplicas, el JobLocker garantiza una sola ejecución por ciclo.
type AlertJob struct {
	cfg       AlertJobConfig
	generator *AlertGenerator
	locker    JobLocker
	log       zerolog.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewAlertJob construye el job. locker nil ejecuta sin lock (una sola instancia).
func NewAlertJob(cfg AlertJobConfig, generator *AlertGenerator, locker JobLocker, log zerolog.Logger) *AlertJob {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	return &AlertJob{
		cfg:       cfg,
		generator: generator,
		locker:    locker,
		log:       log.With().Str("component", "alert_job").Logger(),
	}
}

// RunOnce ejecuta un ciclo. ran=false si otra instancia tenía el lock.
func (j *AlertJob) RunOnce(ctx context.Context) (ran bool, err error) {
	if j.locker != nil {
		release, ok, err := j.locker.TryLock(ctx, alertJobLockKey, j.cfg.LockTTL)
		if err != nil {
			return false, err
		}
		if !ok {
			j.log.Debug().Msg("otra instancia ejecuta el job de alertas")
			return false, nil
		}
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				j.log.Warn().Err(rerr).Msg("no se pudo liberar el lock del job de alertas")
			}
		}()
	}

	alerts, err := j.generator.Compute(ctx)
	if err != nil {
		return true, err
	}
	var critical, warning int
	for _, a := range alerts {
		if a.Severity == entity.SeverityCritical {
			critical++
		} else {
			warning++
		}
	}
	ev := j.log.Info()
	if critical > 0 {
		ev = j.log.Warn()
	}
	ev.Int("total", len(alerts)).Int("critical", critical).Int("warning", warning).Msg("alertas de dotación calculadas")
	return true, nil
}

// Start lanza el ciclo en segundo plano. Llamar Stop para detenerlo.
func (j *AlertJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isRunning {
		return
	}
	j.isRunning = true
	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.loop(ctx)
	j.log.Info().Dur("interval", j.cfg.Interval).Msg("job de alertas iniciado")
}

// Stop detiene el ciclo y espera a que termine la ejecución en curso.
func (j *AlertJob) Stop() {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = false
	cancel := j.cancel
	j.mu.Unlock()

	cancel()
	j.wg.Wait()
	j.log.Info().Msg("job de alertas detenido")
}

func (j *AlertJob) loop(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	j.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *AlertJob) tick(ctx context.Context) {
	if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
		j.log.Error().Err(err).Msg("error en el job de alertas")
	}
}
