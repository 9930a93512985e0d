package commands

import (
	"context"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

// VerifyCmd implements the 'verify' command: a dry run reporting which pages
// would be created and which cross-reference links would not resolve.
// Intended as a CI gate; unresolved links fail the command.
type VerifyCmd struct {
	ConnectionFlags

	AllowUnresolved bool `help:"Exit zero even when cross-reference links would not resolve"`
}

func (v *VerifyCmd) Run(_ *Global, _ *CLI) error {
	cfg, err := v.resolveConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	inputs, err := loadRunInputs(ctx, cfg)
	if err != nil {
		return err
	}

	report, err := inputs.reconciler.Verify(inputs.units, inputs.index)
	if err != nil {
		return err
	}

	if len(report.UnresolvedLinks) > 0 && !v.AllowUnresolved {
		return errors.New(errors.CategoryValidation, errors.SeverityError, "cross-reference links would not resolve").
			WithContext("count", len(report.UnresolvedLinks))
	}
	return nil
}
