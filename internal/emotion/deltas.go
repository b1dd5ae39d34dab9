package emotion

// #region action-deltas

// actionDeltas maps each teacher action to its per-unit-intensity emotion
// delta. Kept as static data so the table can be inspected and tuned
// without touching control flow.
var actionDeltas = map[ActionKind]Delta{
	ActionYell:                  {Sadness: 1, Frustration: 0.5, Anger: 2},
	ActionPraise:                {Happiness: 2, Sadness: -1, Boredom: -0.5},
	ActionCallToBoard:           {Sadness: 1.5, Boredom: -2},
	ActionChangeSeating:         {Frustration: 0.5, Boredom: -1},
	ActionRemoveFromClass:       {Sadness: 2, Frustration: 2, Anger: 3},
	ActionPositiveReinforcement: {Happiness: 1.5, Frustration: -1},
	ActionIgnore:                {Sadness: 0.5, Frustration: 1},
	ActionGiveBreak:             {Frustration: -2, Boredom: -3},
}

// ActionDelta returns the per-unit-intensity delta for an action kind.
// Unknown kinds return a zero delta.
func ActionDelta(kind ActionKind) Delta {
	return actionDeltas[kind]
}

// #endregion action-deltas

// #region trigger-deltas

// triggerDeltas maps situational triggers to fixed emotion deltas.
var triggerDeltas = map[TriggerKind]Delta{
	TriggerIgnoredRaisedHand:      {Sadness: 1, Frustration: 1.5},
	TriggerWrongAnswerPublic:      {Happiness: -1, Sadness: 2, Frustration: 1},
	TriggerPeerPraise:             {Happiness: 1, Boredom: -0.5},
	TriggerLongPassiveActivity:    {Frustration: 0.2, Boredom: 0.5},
	TriggerSuccessfulContribution: {Happiness: 2, Frustration: -0.5, Boredom: -1},
	TriggerPeerConflict:           {Sadness: 0.5, Frustration: 1, Anger: 1.5},
}

// TriggerDelta returns the fixed delta for a trigger kind.
// Unknown kinds return a zero delta.
func TriggerDelta(kind TriggerKind) Delta {
	return triggerDeltas[kind]
}

// #endregion trigger-deltas
