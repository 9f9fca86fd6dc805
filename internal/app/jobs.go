package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// backupKeep is how many timestamped snapshot backups the blob store
// retains alongside the live catalog blob.
const backupKeep = 7

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	spec := a.appConfig.Registry.BackupCron
	if spec == "" {
		spec = "@daily"
	}
	_, err := a.sched.AddFunc(spec, func() {
		a.SchedBackupTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedBackupTask snapshots the catalog into a timestamped backup key
// and prunes backups beyond the retention count.
func (a *Application) SchedBackupTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	blob, err := a.engine.ExportSnapshot()
	if err != nil {
		zap.S().Errorf("snapshot backup export failed: %v", err)
		return
	}

	key := fmt.Sprintf("backup/%s.sqlite", time.Now().Format("20060102-150405"))
	if err := a.blobs.SaveNamed(key, blob); err != nil {
		zap.S().Errorf("snapshot backup save failed: %v", err)
		return
	}
	zap.L().Info("catalog backup saved", zap.String("key", key), zap.Int("bytes", len(blob)))

	a.pruneBackups()
}

func (a *Application) pruneBackups() {
	keys, err := a.blobs.Keys()
	if err != nil {
		zap.S().Errorf("backup prune list failed: %v", err)
		return
	}
	var backups []string
	for _, k := range keys {
		if strings.HasPrefix(k, "backup/") {
			backups = append(backups, k)
		}
	}
	// keys come back sorted, oldest timestamps first
	for len(backups) > backupKeep {
		if err := a.blobs.Delete(backups[0]); err != nil {
			zap.S().Errorf("backup prune failed: %v", err)
			return
		}
		backups = backups[1:]
	}
}
