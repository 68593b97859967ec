// Package errors provides structured error handling for initiative-api.
//
// Errors carry a code, a message, optional metadata, and an optional
// wrapped cause. Codes map to HTTP status codes at the handler boundary.
//
// Creating errors:
//
//	err := errors.NotFound("campaign not found")
//	err := errors.InvalidArgumentf("invalid combatant type: %q", t)
//
// Adding metadata:
//
//	err := errors.NotFound("campaign not found").
//	    WithMeta("campaign_id", campaignID)
//
// Wrapping errors:
//
//	if err := repo.GetData(ctx, id); err != nil {
//	    return errors.Wrap(err, "failed to load campaign data")
//	}
//
// Checking errors:
//
//	if errors.IsNotFound(err) {
//	    // treat as empty campaign
//	}
//
// Validating input:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", input.Name, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// Layer guidelines: repositories return NotFound/AlreadyExists with the
// relevant ids in metadata; orchestrators validate inputs and wrap
// repository errors with business context; handlers convert codes to
// HTTP statuses and log internals.
package errors
