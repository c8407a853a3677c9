/*
Package lease turns a best-effort distributed lock into a lease with exactly
two failure kinds.

	leaseFn := manager.CreateLease(30 * time.Second)
	release, err := leaseFn(ctx, "report:42")
	if errors.Is(err, domain.ErrAlreadyLeased) {
		return nil // someone else is refreshing it
	}
	if err != nil {
		return err // *domain.LeaseError, the datastore is unavailable
	}
	defer release(ctx)
*/
package lease
