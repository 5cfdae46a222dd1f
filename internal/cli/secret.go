package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"runepkg/internal/types"
)

// readSecret acquires the privilege secret once per batch. Root needs
// none; otherwise sudo_password from env/config wins over the TTY prompt.
// A nil secret leaves sudo to cached or passwordless credentials.
func readSecret(prompt io.Writer) (*types.Secret, error) {
	if os.Geteuid() == 0 {
		return nil, nil
	}
	if configured := viper.GetString("sudo_password"); configured != "" {
		return types.NewSecret([]byte(configured)), nil
	}
	tty, err := os.Open("/dev/tty")
	if err != nil {
		log.Warn().Err(err).Msg("no terminal for password prompt, relying on cached sudo credentials")
		return nil, nil
	}
	defer tty.Close()
	if !term.IsTerminal(int(tty.Fd())) {
		return nil, nil
	}

	fmt.Fprint(prompt, "Password for privileged steps: ")
	pass, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read password").
			WithCause(err)
	}
	secret := types.NewSecret(pass)
	for i := range pass {
		pass[i] = 0
	}
	return secret, nil
}
