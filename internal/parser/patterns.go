package parser

import "regexp"

// DeathMarker is the substring every kill line carries. It doubles as a
// cheap pre-filter so unrelated lines never reach the regex.
const DeathMarker = "<Actor Death>"

// Matches:
//
//	<Actor Death> CActor::Kill: 'Victim' [200] in zone 'Zone_1' killed by 'Killer' [100] using 'weapon_x' [Class unknown] ...
//
// Captures: victim, killer, weapon. Matching is case-insensitive.
var killLinePattern = regexp.MustCompile(
	`(?i)<Actor Death>\s+CActor::Kill:\s*'(?P<victim>[^']+)'\s*\[[^\]]+\]\s*in zone '[^']+'\s*killed by\s*'(?P<killer>[^']+)'\s*\[[^\]]+\]\s*using\s*'(?P<weapon>[^']+)'`,
)

var (
	victimGroup = killLinePattern.SubexpIndex("victim")
	killerGroup = killLinePattern.SubexpIndex("killer")
	weaponGroup = killLinePattern.SubexpIndex("weapon")
)
