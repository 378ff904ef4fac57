package stats

const unknownQueue = "Custom/Unknown"

var queueNames = map[int]string{
	420:  "Ranked Solo/Duo",
	440:  "Ranked Flex",
	400:  "Normal Draft",
	430:  "Normal Blind",
	490:  "Quickplay",
	450:  "ARAM",
	1700: "Arena",
	1090: "TFT Normal",
	1100: "TFT Ranked",
	900:  "URF",
	1900: "URF",
	0:    unknownQueue,
}

func QueueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	return unknownQueue
}
