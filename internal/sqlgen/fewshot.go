package sqlgen

// DefaultExamples is the few-shot catalog shown to the generator, covering
// top-N, aggregation, comparison, filtering by threshold, and named-entity
// lookup question shapes.
func DefaultExamples() []FewShotExample {
	return []FewShotExample{
		{
			Question: "Who are the top 5 scorers this season?",
			SQL:      "SELECT p.name, ps.pts FROM player_stats ps JOIN players p ON p.id = ps.player_id WHERE ps.season = '2023-24' ORDER BY ps.pts DESC LIMIT 5",
		},
		{
			Question: "What is the average points per game for the Lakers?",
			SQL:      "SELECT AVG(ts.pts_per_game) FROM team_stats ts JOIN teams t ON t.id = ts.team_id WHERE t.name = 'Lakers'",
		},
		{
			Question: "How many wins do the Celtics have this season?",
			SQL:      "SELECT ts.wins FROM team_stats ts JOIN teams t ON t.id = ts.team_id WHERE t.name = 'Celtics' AND ts.season = '2023-24'",
		},
		{
			Question: "Which players average more than 25 points per game?",
			SQL:      "SELECT p.name, ps.pts FROM player_stats ps JOIN players p ON p.id = ps.player_id WHERE ps.pts > 25 ORDER BY ps.pts DESC",
		},
		{
			Question: "Compare the rebounds per game of the top two rebounders.",
			SQL:      "SELECT p.name, ps.reb FROM player_stats ps JOIN players p ON p.id = ps.player_id ORDER BY ps.reb DESC LIMIT 2",
		},
		{
			Question: "What is LeBron James' true shooting percentage?",
			SQL:      "SELECT ps.ts_pct FROM player_stats ps JOIN players p ON p.id = ps.player_id WHERE p.name = 'LeBron James'",
		},
		{
			Question: "How many total assists did the Warriors record this season?",
			SQL:      "SELECT SUM(ps.ast) FROM player_stats ps JOIN players p ON p.id = ps.player_id JOIN teams t ON t.id = p.team_id WHERE t.name = 'Warriors' AND ps.season = '2023-24'",
		},
		{
			Question: "List games played between the Bucks and the Nets.",
			SQL:      "SELECT g.played_at, g.home_score, g.away_score FROM games g JOIN teams h ON h.id = g.home_team_id JOIN teams a ON a.id = g.away_team_id WHERE (h.name = 'Bucks' AND a.name = 'Nets') OR (h.name = 'Nets' AND a.name = 'Bucks') ORDER BY g.played_at DESC",
		},
	}
}
