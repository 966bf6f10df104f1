package controllers

import (
	"context"

	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

func warn(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.WarnErr(ctx, msg, err)
}
