// Package telemetry exports sweep samples and validation results to
// InfluxDB. When the server is unreachable, points are spooled to a
// gzip-compressed line protocol file for later replay.
package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/apexsim/apexsim/internal/config"
	"github.com/apexsim/apexsim/internal/model"
	"github.com/apexsim/apexsim/internal/sweep"
	"github.com/apexsim/apexsim/internal/util"
)

// ErrDisabled is returned by Connect when telemetry export is turned off.
var ErrDisabled = errors.New("telemetry export is disabled")

// bucketRetentionSeconds is the retention applied to created buckets, 90 days.
const bucketRetentionSeconds = 60 * 60 * 24 * 90

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
}

// NewManager creates a new telemetry manager. The backup file name is
// derived from the start time so repeated runs never clobber each other.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	name := fmt.Sprintf("telemetry_%s.lp.gz", time.Now().UTC().Format("20060102_150405"))
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: []string{cfg.BucketSweep, cfg.BucketValidation},
		Logger:      log,
		BackupPath:  filepath.Join(cfg.BackupDir, name),
		cfg:         cfg,
	}
}

// SweepBucket returns the bucket receiving sweep sample points.
func (m *Manager) SweepBucket() string {
	return m.cfg.BucketSweep
}

// ValidationBucket returns the bucket receiving validation result points.
func (m *Manager) ValidationBucket() string {
	return m.cfg.BucketValidation
}

// Connect establishes a connection to InfluxDB. An unreachable server is
// not an error: the manager falls back to the gzip backup writer.
func (m *Manager) Connect() error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())

	if err != nil || !running {
		m.IsValid = false
		// create backup writer
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			if err := util.EnsureDir(m.cfg.BackupDir); err != nil {
				return fmt.Errorf("error creating backup directory: %w", err)
			}
			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.backupFile = file
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := m.cfg.Org

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// get influxOrg
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: bucketRetentionSeconds,
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(m.cfg.Org, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
		_, err := m.BackupWriter.Write([]byte(lineProtocol + "\n"))
		if err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() {
	for _, writer := range m.Writers {
		writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			m.Logger.Error().Err(err).Msg("Error closing telemetry backup writer")
		}
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		if err := m.backupFile.Close(); err != nil {
			m.Logger.Error().Err(err).Msg("Error closing telemetry backup file")
		}
		m.backupFile = nil
	}
}

// SweepPointFor builds the telemetry point for one sweep sample.
func SweepPointFor(vehicleName, runID string, p sweep.Point) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"sweep_point",
		map[string]string{
			"vehicle": vehicleName,
			"run_id":  runID,
			"gear":    strconv.Itoa(p.Gear),
		},
		map[string]interface{}{
			"velocity":    p.Velocity,
			"rpm":         p.RPM,
			"torque":      p.Torque,
			"power_kw":    p.PowerKW,
			"drive_force": p.DriveForce,
		},
		time.Now(),
	)
}

// ValidationPointFor builds the telemetry point for a validation result.
func ValidationPointFor(vehicleName string, run *model.ValidationRun) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"validation_run",
		map[string]string{
			"vehicle": vehicleName,
		},
		map[string]interface{}{
			"ok":       run.OK,
			"errors":   run.ErrorCount,
			"warnings": run.WarningCount,
		},
		time.Now(),
	)
}
