package graph

// ResolveSockets computes the ordered input and output sockets of a part
// with the given type and link state. It is pure: equal arguments always
// produce equal socket lists.
func ResolveSockets(pt PartType, link LinkData) (inputs, outputs []Socket) {
	inputs, outputs = defaultSockets(pt)

	if link.Mode == LinkMaster {
		outputs = append(outputs, Socket{Name: SocketLinkOut, Type: SocketLink})
	}

	if link.Mode == LinkSlave {
		inputs = append(inputs, Socket{Name: SocketLinkIn, Type: SocketLink})
	}

	if link.TriggerInputEnabled {
		inputs = append(inputs, Socket{Name: SocketVisibilityIn, Type: SocketTrigger})
	}

	return inputs, outputs
}

func defaultSockets(pt PartType) (inputs, outputs []Socket) {
	switch pt := pt.(type) {
	case TriggerKind:
		if fft, ok := pt.(TriggerAudioFFT); ok {
			outputs = fft.Outputs.GenerateOutputs()
		} else {
			outputs = []Socket{{Name: SocketTriggerOut, Type: SocketTrigger}}
		}
	case SourceKind:
		inputs = []Socket{{Name: SocketTriggerIn, Type: SocketTrigger}}
		outputs = []Socket{{Name: SocketMediaOut, Type: SocketMedia}}
	case MaskKind:
		inputs = []Socket{
			{Name: SocketMediaIn, Type: SocketMedia},
			{Name: SocketMaskIn, Type: SocketMedia},
		}
		outputs = []Socket{{Name: SocketMediaOut, Type: SocketMedia}}
	case ModulizerKind:
		inputs = []Socket{
			{Name: SocketMediaIn, Type: SocketMedia},
			{Name: SocketTriggerIn, Type: SocketTrigger},
		}
		outputs = []Socket{{Name: SocketMediaOut, Type: SocketMedia}}
	case LayerKind:
		inputs = []Socket{
			{Name: SocketLayerInput, Type: SocketMedia},
			{Name: SocketLayerTrigger, Type: SocketTrigger},
		}
		outputs = []Socket{{Name: SocketLayerOutput, Type: SocketLayer}}
	case MeshKind:
		inputs = []Socket{
			{Name: SocketVertexIn, Type: SocketMedia},
			{Name: SocketControlIn, Type: SocketTrigger},
		}
		outputs = []Socket{{Name: SocketGeometryOut, Type: SocketMedia}}
	case OutputKind:
		inputs = []Socket{{Name: SocketLayerIn, Type: SocketLayer}}
	}

	return inputs, outputs
}
