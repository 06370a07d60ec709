package command

import (
	"errors"
	"os/exec"
	"runtime"
)

// ErrIncognitoUnsupported is returned when an incognito window is requested
// without a configured browser.
var ErrIncognitoUnsupported = errors.New("incognito needs a configured browser")

// Opener opens a URL outside the program.
type Opener func(url string, incognito bool) error

// NewOpener returns an Opener that starts browser with the URL, or the
// system URL handler when browser is empty.
func NewOpener(browser string) Opener {
	return func(url string, incognito bool) error {
		cmd, err := openCommand(runtime.GOOS, browser, url, incognito)
		if err != nil {
			return err
		}
		return cmd.Start()
	}
}

func openCommand(goos, browser, url string, incognito bool) (*exec.Cmd, error) {
	if browser != "" {
		if incognito {
			return exec.Command(browser, "--incognito", url), nil
		}
		return exec.Command(browser, url), nil
	}
	if incognito {
		return nil, ErrIncognitoUnsupported
	}
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return exec.Command("xdg-open", url), nil
	}
}
