// Package packet holds the Java Edition packets understood by the proxy. Every packet is a Go type
// implementing Packet; its ID is a stable identifier for the packet kind that does not change between
// protocol versions. The wire id of a packet depends on the protocol version and connection state and is
// resolved through a Table.
package packet

import "github.com/cooldogedev/crossplay/java/protocol"

// Packet represents a packet that may be sent over a Java Edition connection.
type Packet interface {
	// ID returns the stable kind of the packet. It is not the id used on the wire.
	ID() uint32
	// Marshal encodes or decodes the packet using the IO passed.
	Marshal(io protocol.IO)
}

const (
	IDHandshake uint32 = iota + 1

	IDLoginDisconnect
	IDEncryptionRequest
	IDLoginSuccess
	IDSetCompression
	IDLoginPluginRequest
	IDCookieRequest
	IDLoginStart
	IDLoginPluginResponse
	IDLoginAcknowledged
	IDCookieResponse

	IDClientboundPluginMessage
	IDConfigurationDisconnect
	IDFinishConfiguration
	IDClientboundKeepAlive
	IDPing
	IDRegistryData
	IDAddResourcePack
	IDFeatureFlags
	IDClientboundKnownPacks
	IDClientInformation
	IDServerboundPluginMessage
	IDAcknowledgeFinishConfiguration
	IDServerboundKeepAlive
	IDPong
	IDResourcePackResponse
	IDServerboundKnownPacks

	IDBundleDelimiter
	IDSpawnEntity
	IDSpawnExperienceOrb
	IDEntityAnimation
	IDBlockUpdate
	IDChangeDifficulty
	IDChunkBatchFinished
	IDChunkBatchStart
	IDClearTitles
	IDClientboundCloseContainer
	IDSetContainerContent
	IDSetContainerSlot
	IDDisconnect
	IDDisguisedChat
	IDEntityEvent
	IDUnloadChunk
	IDGameEvent
	IDChunkData
	IDLogin
	IDUpdateEntityPosition
	IDUpdateEntityPositionRotation
	IDUpdateEntityRotation
	IDOpenScreen
	IDPlayerChat
	IDPlayerInfoRemove
	IDPlayerInfoUpdate
	IDSynchronisePlayerPosition
	IDRemoveEntities
	IDRespawn
	IDSetHeadRotation
	IDUpdateSectionBlocks
	IDSetActionBarText
	IDClientboundSetHeldItem
	IDSetCenterChunk
	IDSetRenderDistance
	IDSetDefaultSpawnPosition
	IDSetEntityMetadata
	IDSetEntityVelocity
	IDSetEquipment
	IDSetExperience
	IDSetHealth
	IDSetSubtitleText
	IDUpdateTime
	IDSetTitleText
	IDSetTitleAnimationTimes
	IDEntitySoundEffect
	IDSoundEffect
	IDStartConfiguration
	IDStopSound
	IDSystemChat
	IDPickupItem
	IDTeleportEntity

	IDConfirmTeleportation
	IDChatCommand
	IDChatMessage
	IDChunkBatchReceived
	IDClientCommand
	IDAcknowledgeConfiguration
	IDClickContainer
	IDServerboundCloseContainer
	IDInteract
	IDSetPlayerPosition
	IDSetPlayerPositionRotation
	IDSetPlayerRotation
	IDSetPlayerOnGround
	IDPlayerAction
	IDPlayerCommand
	IDServerboundSetHeldItem
	IDSetCreativeModeSlot
	IDSwingArm
	IDUseItemOn
	IDUseItem
)
