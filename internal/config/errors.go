package config

import "errors"

var errMissingDSN = errors.New("DATABASE_URL is required when DATASTORE=postgres")
