package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/apperror"
)

// SQLSTATE codes translated into operational errors.
const (
	codeUniqueViolation     = "23505"
	codeInvalidText         = "22P02"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
	codeNumericOutOfRange   = "22003"
	codeStringTooLong       = "22001"
	codeCheckViolation      = "23514"
	codeInvalidParamValue   = "22023"
	codeDatetimeFieldFormat = "22009"
)

// mapError translates driver errors into repository sentinels and
// operational errors. Anything unrecognised is returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return apperror.Wrap(apperror.KindConflict, duplicateMessage(pgErr.Detail), err)
	case codeInvalidText, codeInvalidDatetime, codeDatetimeOverflow, codeNumericOutOfRange,
		codeInvalidParamValue, codeDatetimeFieldFormat:
		return apperror.Wrap(apperror.KindValidation, "Invalid input value: "+pgErr.Message+".", err)
	case codeStringTooLong, codeCheckViolation:
		return apperror.Wrap(apperror.KindValidation, "Invalid input data. "+pgErr.Message, err)
	}
	return err
}

// duplicateMessage extracts the value from a detail like
// `Key (title)=(Go in Action) already exists.`
func duplicateMessage(detail string) string {
	value := detail
	if i := strings.Index(detail, ")=("); i >= 0 {
		value = detail[i+3:]
		if j := strings.LastIndex(value, ") already exists"); j >= 0 {
			value = value[:j]
		}
	}
	return fmt.Sprintf("Duplicate field value: %q. Please use another value!", value)
}
