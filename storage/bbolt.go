/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/go-stoabs/bbolt"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
	bboltLib "go.etcd.io/bbolt"
)

const fileMode = 0640
const bboltDbExtension = ".db"

// BBoltConfig specifies config for BBolt databases.
type BBoltConfig struct {
	// Backup specifies backup config for the database.
	Backup BBoltBackupConfig `koanf:"backup"`
}

// BBoltBackupConfig specifies config for BBolt database backups.
type BBoltBackupConfig struct {
	// Directory specifies the directory in which the BBolt backup should be written.
	Directory string `koanf:"directory"`
	// Interval specifies the time between backups.
	Interval time.Duration `koanf:"interval"`
}

// Enabled returns whether backups are enabled for BBolt.
func (b BBoltBackupConfig) Enabled() bool {
	return b.Interval > 0 && len(b.Directory) > 0
}

type bboltDatabase struct {
	datadir  string
	config   BBoltConfig
	ctx      context.Context
	cancel   context.CancelFunc
	routines *sync.WaitGroup
}

func createBBoltDatabase(datadir string, config BBoltConfig) *bboltDatabase {
	result := bboltDatabase{
		datadir:  datadir,
		config:   config,
		routines: &sync.WaitGroup{},
	}
	result.ctx, result.cancel = context.WithCancel(context.Background())
	return &result
}

func (b bboltDatabase) createStore(moduleName string, storeName string) (stoabs.KVStore, error) {
	fullStoreName := path.Join(moduleName, storeName)
	log.Logger().
		WithField(core.LogFieldStore, fullStoreName).
		Debug("Creating BBolt store")
	databasePath := path.Join(b.datadir, fullStoreName) + bboltDbExtension
	store, err := bbolt.CreateBBoltStore(databasePath, stoabs.WithLockAcquireTimeout(lockAcquireTimeout))
	if err != nil {
		return nil, err
	}
	if b.config.Backup.Enabled() {
		b.startBackup(fullStoreName, store)
	}
	return store, nil
}

func (b bboltDatabase) getClass() Class {
	return VolatileStorageClass
}

func (b bboltDatabase) startBackup(fullStoreName string, store stoabs.KVStore) {
	interval := b.config.Backup.Interval
	logger := log.Logger().WithField(core.LogFieldStore, fullStoreName)
	logger.Infof("BBolt database will be backed up at interval of %s", interval)
	b.routines.Add(1)
	go func() {
		defer b.routines.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := b.performBackup(fullStoreName, store); err != nil {
					logger.WithError(err).Error("Unable to complete BBolt backup")
				}
			case <-b.ctx.Done():
				return
			}
		}
	}()
}

// performBackup writes the store to {backup dir}/{store}.db.
// The backup is first written to a work file, the previous backup is kept as .previous,
// so a crash during backup never leaves a corrupt backup behind.
func (b bboltDatabase) performBackup(fullStoreName string, store stoabs.KVStore) error {
	backupFilePath := path.Join(b.config.Backup.Directory, fullStoreName+bboltDbExtension)
	logger := log.Logger().WithField(core.LogFieldStore, fullStoreName)
	logger.Debugf("Starting BBolt database backup to: %s", backupFilePath)
	startTime := time.Now()
	workFilePath := backupFilePath + ".work"

	err := store.Read(context.Background(), func(tx stoabs.ReadTx) error {
		if err := os.MkdirAll(path.Dir(backupFilePath), os.ModePerm); err != nil {
			return err
		}
		return writeBBoltTx(tx, workFilePath)
	})
	if err != nil {
		return err
	}
	if err = rotateBackup(backupFilePath); err != nil {
		return err
	}
	if err = os.Rename(workFilePath, backupFilePath); err != nil {
		return err
	}
	logger.Debugf("BBolt database backup finished in %s", time.Since(startTime))
	return nil
}

func writeBBoltTx(tx stoabs.ReadTx, target string) error {
	workFile, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}
	defer workFile.Close()
	if _, err = tx.Unwrap().(*bboltLib.Tx).WriteTo(workFile); err != nil {
		return err
	}
	return workFile.Close()
}

// rotateBackup renames an existing backup file to .previous.
func rotateBackup(backupFilePath string) error {
	stat, err := os.Stat(backupFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case stat.IsDir():
		return fmt.Errorf("backup target file is a directory: %s", backupFilePath)
	}
	return os.Rename(backupFilePath, backupFilePath+".previous")
}

func (b bboltDatabase) close() {
	b.cancel()
	b.routines.Wait()
}
