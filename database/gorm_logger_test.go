package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLogger(verbose bool) (*bytes.Buffer, logger.Interface) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &buf, newGormSlogLogger(base, verbose)
}

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_RecordNotFoundIsQuiet(t *testing.T) {
	buf, l := newTestLogger(false)
	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())
}

func TestGormLogger_ErrorsAreLogged(t *testing.T) {
	buf, l := newTestLogger(false)
	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	assert.Contains(t, buf.String(), "gorm_query_failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestGormLogger_SlowQuery(t *testing.T) {
	buf, l := newTestLogger(false)
	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), "gorm_slow_query")
}

func TestGormLogger_QuietAtWarnForFastQueries(t *testing.T) {
	buf, l := newTestLogger(false)
	l.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Empty(t, buf.String())

	buf, l = newTestLogger(true)
	l.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Contains(t, buf.String(), "gorm_query")
}

func TestGormLogger_Silent(t *testing.T) {
	buf, l := newTestLogger(true)
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor("postgres", "postgres://localhost/x")
	assert.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor("mysql", "user:pass@tcp(localhost:3306)/x")
	assert.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = dialectorFor("sqlite", "x.db")
	assert.Error(t, err)
}
