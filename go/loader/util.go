package loader

func getMagic(p []byte, n int) []byte {
	if len(p) < n {
		return nil
	}
	return p[:n]
}
