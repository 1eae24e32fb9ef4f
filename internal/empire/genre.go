package empire

// fallbackGenre keeps a session going when everything else fails.
const fallbackGenre = "Lo-Fi Hip Hop"

// selectOptimalGenre picks the next session's genre. With recent performance
// data the top performer wins 70% of the time and a random rotation genre the
// other 30%; without data the rotation is walked by the hour of day.
func (e *Empire) selectOptimalGenre() string {
	now := e.now()
	rotation := e.Settings().Generation.GenresRotation
	if len(rotation) == 0 {
		return fallbackGenre
	}

	perf, err := e.cfg.Store.GenrePerformance(now.AddDate(0, 0, -7))
	if err != nil {
		e.logger.Warn("genre performance query failed", "err", err)
		return fallbackGenre
	}
	if len(perf) > 0 {
		if e.randFloat() < 0.7 {
			return perf[0].Genre
		}
		return rotation[e.randIntn(len(rotation))]
	}
	return rotation[now.Hour()%len(rotation)]
}
