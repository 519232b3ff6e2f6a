package integration

// SetActive returns an UpdateSetter that toggles the integration.
func SetActive(active bool) UpdateSetter {
	return func(i *Integration) error {
		i.Active = active
		return nil
	}
}

// SetSettings returns an UpdateSetter that replaces the non-secret
// provider settings.
func SetSettings(settings Settings) UpdateSetter {
	return func(i *Integration) error {
		i.Settings = settings
		return nil
	}
}

// SetSealedCredentials returns an UpdateSetter that replaces the sealed
// credential blob.
func SetSealedCredentials(sealed []byte) UpdateSetter {
	return func(i *Integration) error {
		if len(sealed) == 0 {
			return ErrMissingCredentials
		}
		i.SealedCredentials = sealed
		return nil
	}
}
