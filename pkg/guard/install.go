package guard

import "context"

// InstallAPI reports whether the application was installed.
type InstallAPI interface {
	CheckInstalled(ctx context.Context) (bool, error)
}

// InstallGuard keeps an installed application out of the install wizard by
// sending it to the root path. Errors of the install check fail the
// navigation.
func InstallGuard(api InstallAPI, paths Paths) Guard {
	return func(ctx context.Context, to *Location, _ Location) (Decision, error) {
		if to.Path != paths.Install {
			return Allow(), nil
		}
		installed, err := api.CheckInstalled(ctx)
		if err != nil {
			return Decision{}, err
		}
		if installed {
			return Redirect(paths.Root), nil
		}
		return Allow(), nil
	}
}
