package session

import (
	"github.com/cooldogedev/crossplay/java/protocol"
)

// DefaultRegistry returns a Registry holding every translator of the proxy.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerConfiguration(r)
	registerPlay(r)
	registerFront(r)
	return r
}

func registerConfiguration(r *Registry) {
	HandleBack(r, joined, handleKeepAlive)
	HandleBack(r, joined, handlePing)
	HandleBack(r, joined, handlePluginMessage)
	HandleBack(r, configuring, handleRegistryCodec, Version(protocol.Version1_20_3))
	HandleBack(r, configuring, handleRegistryData, Version(protocol.Version1_20_5))
	HandleBack(r, configuring, handleKnownPacks, Version(protocol.Version1_20_5))
	HandleBack(r, joined, handleResourcePack)
	HandleBack(r, configuring, handleFeatureFlags)
	HandleBack(r, configuring, handleFinishConfiguration)
	HandleBack(r, configuring, handleConfigurationDisconnect)
	HandleBack(r, joined, handleLogin)
}

// registerPlay registers the translators of the packets a server sends in play. A server keeps sending them
// until the client acknowledged going back to configuration, so they are dropped there without counting a
// violation.
func registerPlay(r *Registry) {
	t := Tolerant()

	HandleBack(r, playing, handleStartConfiguration, t)
	HandleBack(r, playing, handleDisconnect, t)
	HandleBack(r, playing, handleRespawn, t)
	HandleBack(r, playing, handleTeleport, t)
	HandleBack(r, playing, handleBundleDelimiter, t)

	HandleBack(r, playing, handleChunkData, t)
	HandleBack(r, playing, handleUnloadChunk, t)
	HandleBack(r, playing, handleCenterChunk, t)
	HandleBack(r, playing, handleRenderDistance, t)
	HandleBack(r, playing, handleChunkBatchStart, t)
	HandleBack(r, playing, handleChunkBatchFinished, t)
	HandleBack(r, playing, handleBlockUpdate, t)
	HandleBack(r, playing, handleSectionBlocks, t)
	HandleBack(r, playing, handleGameEvent, t)
	HandleBack(r, playing, handleUpdateTime, t)
	HandleBack(r, playing, handleDifficulty, t)
	HandleBack(r, playing, handleSpawnPosition, t)

	HandleBack(r, playing, handleSpawnEntity, t)
	HandleBack(r, playing, handleSpawnExperienceOrb, t)
	HandleBack(r, playing, handleEntityPosition, t)
	HandleBack(r, playing, handleEntityPositionRotation, t)
	HandleBack(r, playing, handleEntityRotation, t)
	HandleBack(r, playing, handleHeadRotation, t)
	HandleBack(r, playing, handleTeleportEntity, t)
	HandleBack(r, playing, handleEntityVelocity, t)
	HandleBack(r, playing, handleEntityAnimation, t)
	HandleBack(r, playing, handleEntityEvent, t)
	HandleBack(r, playing, handleEquipment, t)
	HandleBack(r, playing, handleEntityMetadata, t)
	HandleBack(r, playing, handlePickupItem, t)
	HandleBack(r, playing, handleRemoveEntities, t)
	HandleBack(r, playing, handlePlayerInfoUpdate, t)
	HandleBack(r, playing, handlePlayerInfoRemove, t)

	HandleBack(r, playing, handleContainerContent, t)
	HandleBack(r, playing, handleContainerSlot, t)
	HandleBack(r, playing, handleOpenScreen, t)
	HandleBack(r, playing, handleCloseScreen, t)
	HandleBack(r, playing, handleHeldItem, t)

	HandleBack(r, playing, handleHealth, t)
	HandleBack(r, playing, handleExperience, t)

	HandleBack(r, playing, handleSystemChat, t)
	HandleBack(r, playing, handlePlayerChat, t)
	HandleBack(r, playing, handleDisguisedChat, t)
	HandleBack(r, playing, handleTitle, t)
	HandleBack(r, playing, handleSubtitle, t)
	HandleBack(r, playing, handleActionBar, t)
	HandleBack(r, playing, handleTitleTimes, t)
	HandleBack(r, playing, handleClearTitles, t)
	HandleBack(r, playing, handleSoundEffect, t)
	HandleBack(r, playing, handleEntitySoundEffect, t)
	HandleBack(r, playing, handleStopSound, t)
}

// registerFront registers the translators of the packets of the client. The client is only read from once
// it spawned, so every one of them runs in play.
func registerFront(r *Registry) {
	HandleFront(r, playing, handleAuthInput, Tolerant())
	HandleFront(r, playing, handleLatency, Tolerant())
	HandleFront(r, playing, handleText)
	HandleFront(r, playing, handleCommandRequest)
	HandleFront(r, playing, handleAnimate)
	HandleFront(r, playing, handleInventoryTransaction)
	HandleFront(r, playing, handleItemStackRequest)
	HandleFront(r, playing, handleContainerClose)
	HandleFront(r, playing, handleInteract)
	HandleFront(r, playing, handleMobEquipment)
	HandleFront(r, playing, handleRespawnRequest)
	HandleFront(r, playing, handleEmote)
	HandleFront(r, playing, handleChunkRadius)
}
