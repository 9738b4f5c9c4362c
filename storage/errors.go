package storage

import (
	"github.com/pkg/errors"
)

var ErrTokenNotFound = errors.New("token not found in the storage")
