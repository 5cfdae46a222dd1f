package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"runepkg/internal/adapters"
	"runepkg/internal/shared"
)

// Clean removes one package's working directory, or every working
// directory when req.Name is empty.
func (s Service) Clean(_ context.Context, req CleanRequest) error {
	release, err := s.acquireSession()
	if err != nil {
		return err
	}
	defer release()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		log.Info().Str("build_dir", s.BuildDir).Msg("resetting build root")
		return s.BuildRoot.Reset()
	}
	if !shared.ValidPackageName(name) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid package name " + name)
	}
	return s.BuildRoot.Clean(name)
}

func (s Service) Doctor(_ context.Context) DoctorResult {
	return DoctorResult{
		MissingRequired: s.Toolchain.Missing(adapters.RequiredTools),
		MissingOptional: s.Toolchain.Missing(adapters.OptionalTools),
		BuildRoot:       s.BuildDir,
		AURURL:          s.AURURL,
	}
}
