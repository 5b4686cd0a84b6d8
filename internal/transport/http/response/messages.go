package response

// 对外文案沿用旧版前端依赖的西语字符串
const (
	MsgCreated             = "Usuario agregado"
	MsgCreatedNoPhoto      = "Usuario agregado sin foto"
	MsgUpdated             = "Usuario actualizado"
	MsgUpdatedKeepPhoto    = "Usuario actualizado sin modificar la foto"
	MsgDeleted             = "Usuario eliminado"
	MsgUploadFailed        = "Error al subir la imagen"
	MsgAlive               = "Servidor funcionando..."
	MsgTooManyRequests     = "too many requests"
	MsgServerBusy          = "server busy"
	MsgRequestBodyTooLarge = "request body too large"
	MsgInternal            = "internal error"
	MsgRequestTimeout      = "timeout: request"
)
